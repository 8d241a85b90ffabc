package patient

import (
	"context"

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

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, fhir_id, given_name, family_name, gender, birth_date, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FHIRID, &p.GivenName, &p.FamilyName, &p.Gender, &p.BirthDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByFHIRID(ctx context.Context, fhirID string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE fhir_id = $1`, fhirID))
}

// Upsert relies on the fhir_id uniqueness constraint: a conflicting insert
// becomes an in-place update of the mutable fields, so two concurrent
// callers upserting the same registry id converge on one row. The id in the
// VALUES clause is discarded on conflict; the surrogate key never moves.
func (r *patientRepoPG) Upsert(ctx context.Context, p *Patient) (*Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, fhir_id, given_name, family_name, gender, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fhir_id) DO UPDATE SET
			given_name  = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			gender      = EXCLUDED.gender,
			birth_date  = EXCLUDED.birth_date,
			updated_at  = NOW()
		RETURNING `+patientCols,
		p.ID, p.FHIRID, p.GivenName, p.FamilyName, p.Gender, p.BirthDate,
	))
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, nil
}

// -- Favorite Repository --

type favoriteRepoPG struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepoPG{pool: pool}
}

func (r *favoriteRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *favoriteRepoPG) Find(ctx context.Context, patientID uuid.UUID, owner string) (*Favorite, error) {
	var f Favorite
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, patient_id, owner, created_at FROM favorite WHERE patient_id = $1 AND owner = $2`,
		patientID, owner,
	).Scan(&f.ID, &f.PatientID, &f.Owner, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert absorbs duplicates through the (patient_id, owner) uniqueness
// constraint: the conflicting insert is a no-op reported as created=false,
// which the service maps to "already favorited".
func (r *favoriteRepoPG) Insert(ctx context.Context, f *Favorite) (bool, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO favorite (id, patient_id, owner)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, owner) DO NOTHING`,
		f.ID, f.PatientID, f.Owner,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *favoriteRepoPG) Delete(ctx context.Context, patientID uuid.UUID, owner string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM favorite WHERE patient_id = $1 AND owner = $2`, patientID, owner)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *favoriteRepoPG) ListPatients(ctx context.Context, owner string) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.fhir_id, p.given_name, p.family_name, p.gender, p.birth_date, p.created_at, p.updated_at
		FROM favorite f
		JOIN patient p ON p.id = f.patient_id
		WHERE f.owner = $1`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, nil
}

func (r *favoriteRepoPG) CountByOwner(ctx context.Context, owner string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM favorite WHERE owner = $1`, owner).Scan(&n)
	return n, err
}
