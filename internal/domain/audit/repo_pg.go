package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const auditCols = `id, action, patient_id, patient_fhir_id, actor, recorded`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Action, &e.PatientID, &e.PatientFHIRID, &e.Actor, &e.Recorded)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Insert(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	// recorded defaults to NOW() in the schema; read it back so the caller
	// sees the server-assigned timestamp.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO audit_log (id, action, patient_id, patient_fhir_id, actor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING recorded`,
		e.ID, e.Action, e.PatientID, e.PatientFHIRID, e.Actor,
	).Scan(&e.Recorded)
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *repoPG) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+auditCols+` FROM audit_log ORDER BY recorded DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) ByAction(ctx context.Context, action string, limit int) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+auditCols+` FROM audit_log WHERE action = $1 ORDER BY recorded DESC LIMIT $2`,
		action, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) ByDateRange(ctx context.Context, start time.Time, end *time.Time, limit int) ([]*Entry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if end != nil {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+auditCols+` FROM audit_log WHERE recorded >= $1 AND recorded <= $2 ORDER BY recorded DESC LIMIT $3`,
			start, *end, limit)
	} else {
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+auditCols+` FROM audit_log WHERE recorded >= $1 ORDER BY recorded DESC LIMIT $2`,
			start, limit)
	}
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}
