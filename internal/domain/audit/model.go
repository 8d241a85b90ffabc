package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the audit_log table. Rows are append-only: nothing in the
// application updates or deletes them (the only destruction path is the
// cascade when a referenced patient row is deleted).
//
// PatientFHIRID is a denormalized snapshot of the registry identifier taken
// at write time, so reports keep naming the external record even after the
// patient row (and with it the foreign key) is gone from a join's view.
type Entry struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Action        string     `db:"action" json:"action"`
	PatientID     *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	PatientFHIRID *string    `db:"patient_fhir_id" json:"patient_fhir_id,omitempty"`
	Actor         string     `db:"actor" json:"actor"`
	Recorded      time.Time  `db:"recorded" json:"recorded"`
}
