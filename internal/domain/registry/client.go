// Package registry implements the client for the external FHIR registry.
//
// The client is deliberately fail-open: an unreachable, slow, or misbehaving
// registry degrades to zero search results instead of failing the caller's
// request. Callers therefore cannot distinguish "no matches" from "upstream
// unavailable"; the degradation is recorded in the log stream only.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/platform/fhir"
)

const (
	defaultPageSize = 10
	defaultTimeout  = 10 * time.Second
)

type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. for tests or custom
// transports. The client's Timeout bounds every registry call.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPageSize overrides the fixed result page size requested via _count.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout overrides the per-call timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func NewClient(baseURL string, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the registry for patients matching name and returns them
// normalized, in upstream order, capped at the configured page size.
//
// Search never returns an error for upstream conditions: a non-2xx status,
// a malformed envelope, a timeout, or a connection failure all yield an
// empty slice and a log entry. The caller's flow must not depend on the
// registry being healthy.
func (c *Client) Search(ctx context.Context, name string) []fhir.SimplifiedPatient {
	reqURL := fmt.Sprintf("%s/Patient?name=%s&_count=%d",
		c.baseURL, url.QueryEscape(name), c.pageSize)

	c.logger.Info().Str("url", reqURL).Str("name", name).Msg("registry query")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("name", name).Msg("registry request build failed")
		return nil
	}
	req.Header.Set("Accept", "application/fhir+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("name", name).Msg("registry unreachable")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", reqURL).
			Msg("registry returned non-success status")
		return nil
	}

	var bundle fhir.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		c.logger.Error().Err(err).Str("name", name).Msg("registry response malformed")
		return nil
	}

	if len(bundle.Entry) == 0 {
		c.logger.Info().Str("name", name).Msg("no registry patients found")
		return nil
	}

	results := fhir.SimplifyBundle(&bundle)
	c.logger.Info().Str("name", name).Int("count", len(results)).Msg("registry results")
	return results
}
