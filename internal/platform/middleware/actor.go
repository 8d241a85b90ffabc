package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

const ActorHeader = "X-Actor"

type actorKey struct{}

// Actor resolves the caller identity for the request. The identity comes
// from the X-Actor header when present, otherwise the configured default.
// Every audit entry is attributed to this value.
func Actor(defaultActor string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := c.Request().Header.Get(ActorHeader)
			if actor == "" {
				actor = defaultActor
			}

			ctx := context.WithValue(c.Request().Context(), actorKey{}, actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("actor", actor)

			return next(c)
		}
	}
}

// ActorFromContext retrieves the resolved caller identity from context.
// Returns the empty string when the Actor middleware did not run.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
