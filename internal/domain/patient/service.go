package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/platform/fhir"
)

// Searcher is the external registry lookup the service composes with.
// Implementations are fail-open: degraded upstreams surface as empty slices.
type Searcher interface {
	Search(ctx context.Context, name string) []fhir.SimplifiedPatient
}

// Recorder appends audit entries. Recording is fire-and-forget: the call
// never influences the outcome of the operation it documents.
type Recorder interface {
	Record(ctx context.Context, action string, patientID *uuid.UUID, patientFHIRID *string, actor string)
}

// Audit action tags emitted by this service.
const (
	ActionSearch          = "search"
	ActionFavoriteAdded   = "favorite-added"
	ActionFavoriteRemoved = "favorite-removed"
)

type Service struct {
	patients  PatientRepository
	favorites FavoriteRepository
	searcher  Searcher
	recorder  Recorder
}

func NewService(patients PatientRepository, favorites FavoriteRepository, searcher Searcher, recorder Recorder) *Service {
	return &Service{
		patients:  patients,
		favorites: favorites,
		searcher:  searcher,
		recorder:  recorder,
	}
}

// SearchPatients runs a registry lookup and audits it. The search itself
// never touches the store; the audit entry is written whether or not the
// registry returned anything, so degraded searches remain traceable.
func (s *Service) SearchPatients(ctx context.Context, name, actor string) []fhir.SimplifiedPatient {
	results := s.searcher.Search(ctx, name)
	s.recorder.Record(ctx, ActionSearch, nil, nil, actor)
	return results
}

// AddFavoriteResult reports the outcome of an AddFavorite call.
type AddFavoriteResult struct {
	Patient         *Patient
	AlreadyFavorite bool
}

// AddFavorite persists the registry record locally (creating the patient row
// on first sight of the external id, refreshing its fields otherwise) and
// bookmarks it for owner. A repeat call for the same (patient, owner) pair
// is a no-op reported via AlreadyFavorite; it writes no second row and no
// audit entry.
func (s *Service) AddFavorite(ctx context.Context, rec fhir.SimplifiedPatient, owner string) (*AddFavoriteResult, error) {
	if rec.ExternalID == "" {
		return nil, fmt.Errorf("external id is required")
	}
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	p := &Patient{
		FHIRID:     rec.ExternalID,
		GivenName:  rec.GivenName,
		FamilyName: rec.FamilyName,
		Gender:     rec.Gender,
		BirthDate:  parseBirthDate(rec.BirthDate),
	}

	stored, err := s.patients.Upsert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("upsert patient %s: %w", rec.ExternalID, err)
	}

	created, err := s.favorites.Insert(ctx, &Favorite{PatientID: stored.ID, Owner: owner})
	if err != nil {
		return nil, fmt.Errorf("insert favorite for patient %s: %w", stored.ID, err)
	}

	if created {
		s.recorder.Record(ctx, ActionFavoriteAdded, &stored.ID, &stored.FHIRID, owner)
	}

	return &AddFavoriteResult{Patient: stored, AlreadyFavorite: !created}, nil
}

// RemoveFavorite deletes the owner's bookmark for patientID. Removing an
// absent favorite succeeds as a no-op and reports removed=false.
func (s *Service) RemoveFavorite(ctx context.Context, patientID uuid.UUID, owner string) (bool, error) {
	existed, err := s.favorites.Delete(ctx, patientID, owner)
	if err != nil {
		return false, fmt.Errorf("delete favorite for patient %s: %w", patientID, err)
	}
	if !existed {
		return false, nil
	}

	var fhirID *string
	if p, err := s.patients.GetByID(ctx, patientID); err == nil {
		fhirID = &p.FHIRID
	}
	s.recorder.Record(ctx, ActionFavoriteRemoved, &patientID, fhirID, owner)
	return true, nil
}

// ListPatients pages through every locally persisted patient in creation
// order and returns the page plus the total row count.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// ListFavorites returns the owner's favorited patients in storage order.
func (s *Service) ListFavorites(ctx context.Context, owner string) ([]*Patient, error) {
	return s.favorites.ListPatients(ctx, owner)
}

// ClearFavorites removes every favorite for owner one at a time and returns
// the number removed. The batch is not atomic: an interruption leaves the
// remaining favorites in place, and because RemoveFavorite treats absent
// rows as a successful no-op, re-running ClearFavorites converges to empty.
func (s *Service) ClearFavorites(ctx context.Context, owner string) (int, error) {
	favorites, err := s.favorites.ListPatients(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list favorites for %s: %w", owner, err)
	}

	removed := 0
	for _, p := range favorites {
		ok, err := s.RemoveFavorite(ctx, p.ID, owner)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// parseBirthDate interprets the registry's opaque date string as a calendar
// date. Unparsable or absent dates are stored as NULL rather than rejected.
func parseBirthDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
