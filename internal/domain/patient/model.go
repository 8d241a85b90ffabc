package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. The surrogate key never changes once
// assigned; fhir_id is the registry identifier and is unique in the store.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	FHIRID     string     `db:"fhir_id" json:"fhir_id"`
	GivenName  *string    `db:"given_name" json:"given_name,omitempty"`
	FamilyName *string    `db:"family_name" json:"family_name,omitempty"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Favorite maps to the favorite table. At most one row exists per
// (patient_id, owner) pair.
type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Owner     string    `db:"owner" json:"owner"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
