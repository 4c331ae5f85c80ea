package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/form"
	"github.com/miidani/field-server/internal/services"
)

// DraftHandler handles the report-draft lifecycle endpoints.
type DraftHandler struct {
	drafts  *services.DraftRegistry
	reports *services.ReportService
	logger  *zap.SugaredLogger
}

// NewDraftHandler creates a draft handler.
func NewDraftHandler(drafts *services.DraftRegistry, reports *services.ReportService, logger *zap.SugaredLogger) *DraftHandler {
	return &DraftHandler{drafts: drafts, reports: reports, logger: logger}
}

// Create handles POST /api/v1/drafts: a new draft with session defaults.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, draft := h.drafts.Create()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "draft": draft})
}

// Get handles GET /api/v1/drafts/{draftID}.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")
	draft, err := h.drafts.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Draft not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "draft": draft})
}

// Update handles PATCH /api/v1/drafts/{draftID}: one field edit, with
// the cascading resets applied server-side so every client sees the same
// invariant.
func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")

	var req struct {
		Field form.Field `json:"field"`
		Value string     `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Field == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: field")
		return
	}

	draft, err := h.drafts.Apply(id, req.Field, req.Value)
	if err != nil {
		respondDraftError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "draft": draft})
}

// Locate handles POST /api/v1/drafts/{draftID}/location: the geolocation
// callback delivering a coordinate fix.
func (h *DraftHandler) Locate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")

	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields: latitude, longitude")
		return
	}

	draft, err := h.drafts.SetCoordinates(id, *req.Latitude, *req.Longitude)
	if err != nil {
		respondDraftError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "draft": draft})
}

// Submit handles POST /api/v1/drafts/{draftID}/submit: validate, forward
// to the write endpoint, then clear the draft's address and narrative
// fields for the next report.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")

	draft, err := h.drafts.Get(id)
	if err != nil {
		respondDraftError(w, err)
		return
	}

	ack, err := h.reports.Submit(r.Context(), draft)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		h.logger.Errorw("Report submission failed", "draft", id, "error", err)
		respondError(w, http.StatusBadGateway, "Failed to send the report. Please try again.")
		return
	}

	cleared, err := h.drafts.ResetAfterSubmit(id)
	if err != nil {
		respondDraftError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "ack": ack, "draft": cleared})
}

// Destroy handles DELETE /api/v1/drafts/{draftID}.
func (h *DraftHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	h.drafts.Destroy(chi.URLParam(r, "draftID"))
	w.WriteHeader(http.StatusNoContent)
}

func respondDraftError(w http.ResponseWriter, err error) {
	var notFound *services.ErrDraftNotFound
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, "Draft not found")
		return
	}
	var unknown *form.ErrUnknownField
	var urgency *form.ErrInvalidUrgency
	if errors.As(err, &unknown) || errors.As(err, &urgency) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to update draft")
}
