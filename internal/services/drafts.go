package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/form"
	"github.com/miidani/field-server/internal/models"
)

// ErrDraftNotFound reports a lookup for a draft that does not exist or
// was destroyed.
type ErrDraftNotFound struct{ ID string }

func (e *ErrDraftNotFound) Error() string {
	return fmt.Sprintf("draft %q not found", e.ID)
}

// DraftRegistry holds one in-progress report per session. Drafts live in
// memory only: they are created with defaults at session start, mutated
// by edits and geolocation fixes, partially reset after a successful
// submission, and destroyed when the session ends.
type DraftRegistry struct {
	mu     sync.RWMutex
	drafts map[string]models.ReportDraft
	logger *zap.SugaredLogger

	defaultLat string
	defaultLng string
}

// NewDraftRegistry creates an empty registry. defaultLat/defaultLng seed
// new drafts with a last-known-city coordinate when geolocation has not
// reported yet; "0.000000" keeps the zeroed default.
func NewDraftRegistry(defaultLat, defaultLng string, logger *zap.SugaredLogger) *DraftRegistry {
	return &DraftRegistry{
		drafts:     make(map[string]models.ReportDraft),
		logger:     logger,
		defaultLat: defaultLat,
		defaultLng: defaultLng,
	}
}

// Create starts a new draft and returns its ID.
func (r *DraftRegistry) Create() (string, models.ReportDraft) {
	d := form.New()
	if r.defaultLat != "" && r.defaultLng != "" {
		d, _ = form.Apply(d, form.FieldLatitude, r.defaultLat)
		d, _ = form.Apply(d, form.FieldLongitude, r.defaultLng)
	}

	id := uuid.NewString()
	r.mu.Lock()
	r.drafts[id] = d
	r.mu.Unlock()

	r.logger.Debugw("Draft created", "id", id)
	return id, d
}

// Get returns the draft for id.
func (r *DraftRegistry) Get(id string) (models.ReportDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[id]
	if !ok {
		return models.ReportDraft{}, &ErrDraftNotFound{ID: id}
	}
	return d, nil
}

// Apply edits one field of a draft, running the cascading resets, and
// returns the updated draft.
func (r *DraftRegistry) Apply(id string, field form.Field, value string) (models.ReportDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return models.ReportDraft{}, &ErrDraftNotFound{ID: id}
	}
	updated, err := form.Apply(d, field, value)
	if err != nil {
		return d, err
	}
	r.drafts[id] = updated
	return updated, nil
}

// SetCoordinates records a geolocation fix for a draft. On denial or
// unavailability the caller simply never calls this and the draft keeps
// its default coordinates.
func (r *DraftRegistry) SetCoordinates(id string, lat, lng float64) (models.ReportDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return models.ReportDraft{}, &ErrDraftNotFound{ID: id}
	}
	updated := form.SetCoordinates(d, lat, lng)
	r.drafts[id] = updated
	return updated, nil
}

// ResetAfterSubmit clears the submitted draft's address and narrative
// fields in place.
func (r *DraftRegistry) ResetAfterSubmit(id string) (models.ReportDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return models.ReportDraft{}, &ErrDraftNotFound{ID: id}
	}
	updated := form.ResetAfterSubmit(d)
	r.drafts[id] = updated
	return updated, nil
}

// Destroy removes a draft.
func (r *DraftRegistry) Destroy(id string) {
	r.mu.Lock()
	delete(r.drafts, id)
	r.mu.Unlock()
}
