package patient

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByFHIRID(ctx context.Context, fhirID string) (*Patient, error)
	// Upsert inserts the patient or, when a row with the same fhir_id
	// already exists, overwrites its mutable fields in place. The stored
	// row is returned either way; its surrogate key is stable across
	// repeated upserts. The operation is atomic under concurrent callers.
	Upsert(ctx context.Context, p *Patient) (*Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type FavoriteRepository interface {
	Find(ctx context.Context, patientID uuid.UUID, owner string) (*Favorite, error)
	// Insert adds the favorite and reports whether a new row was created.
	// A concurrent or repeated insert of the same (patient, owner) pair is
	// absorbed atomically and reported as created=false.
	Insert(ctx context.Context, f *Favorite) (created bool, err error)
	// Delete removes the favorite for (patientID, owner) and reports
	// whether a row existed. Deleting an absent favorite is not an error.
	Delete(ctx context.Context, patientID uuid.UUID, owner string) (existed bool, err error)
	// ListPatients returns the owner's favorited patients in storage row
	// order; no re-sorting is applied.
	ListPatients(ctx context.Context, owner string) ([]*Patient, error)
	CountByOwner(ctx context.Context, owner string) (int, error)
}
