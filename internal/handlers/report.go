// Package handlers contains HTTP request handlers for the field-report API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/hierarchy"
	"github.com/miidani/field-server/internal/models"
	"github.com/miidani/field-server/internal/services"
	"github.com/miidani/field-server/internal/sheets"
)

const version = "1.2.0"

var startTime = time.Now()

// ReportHandler handles hierarchy, dashboard, and refresh endpoints.
type ReportHandler struct {
	reports *services.ReportService
	store   *services.SnapshotStore
	logger  *zap.SugaredLogger
}

// NewReportHandler creates a report handler.
func NewReportHandler(rs *services.ReportService, store *services.SnapshotStore, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{reports: rs, store: store, logger: logger}
}

// Health handles GET /api/v1/health (liveness probe).
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	adminRows, logRows := h.store.Counts()
	adminLoaded, logsLoaded := h.store.Ready()
	adminLoading, logsLoading := h.store.Loading()
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:       "ok",
		Version:      version,
		Uptime:       time.Since(startTime).String(),
		AdminRows:    adminRows,
		LogRows:      logRows,
		AdminLoaded:  adminLoaded,
		LogsLoaded:   logsLoaded,
		AdminLoading: adminLoading,
		LogsLoading:  logsLoading,
	})
}

// Ready handles GET /api/v1/health/ready (readiness probe). Ready means
// both feeds completed at least one load; the dependent UIs (selects,
// dashboard, map) are only considered usable after that.
func (h *ReportHandler) Ready(w http.ResponseWriter, r *http.Request) {
	adminRows, logRows := h.store.Counts()
	adminLoaded, logsLoaded := h.store.Ready()
	status := models.HealthStatus{
		Version:     version,
		AdminRows:   adminRows,
		LogRows:     logRows,
		AdminLoaded: adminLoaded,
		LogsLoaded:  logsLoaded,
	}
	if !adminLoaded || !logsLoaded {
		status.Status = "not ready"
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status.Status = "ready"
	respondJSON(w, http.StatusOK, status)
}

// RefreshHierarchy handles POST /api/v1/refresh/hierarchy.
func (h *ReportHandler) RefreshHierarchy(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.RefreshAdminData(r.Context()); err != nil {
		respondFetchError(w, err)
		return
	}
	adminRows, _ := h.store.Counts()
	respondJSON(w, http.StatusOK, map[string]int{"rows": adminRows})
}

// RefreshLogs handles POST /api/v1/refresh/logs.
func (h *ReportHandler) RefreshLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.RefreshLogs(r.Context()); err != nil {
		respondFetchError(w, err)
		return
	}
	_, logRows := h.store.Counts()
	respondJSON(w, http.StatusOK, map[string]int{"rows": logRows})
}

// Options handles GET /api/v1/hierarchy/options.
// Query params region/province/commune gate the lower levels.
func (h *ReportHandler) Options(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := hierarchy.Selection{
		Region:   q.Get("region"),
		Province: q.Get("province"),
		Commune:  q.Get("commune"),
	}
	respondJSON(w, http.StatusOK, h.reports.Options(sel))
}

// Reports handles GET /api/v1/reports. In rank mode, per-field query
// params score and re-order the log; in filter mode, q= strictly hides
// non-matching rows.
func (h *ReportHandler) Reports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.SearchFilters{
		Region:   q.Get("region"),
		Province: q.Get("province"),
		Commune:  q.Get("commune"),
		Douar:    q.Get("douar"),
		Urgency:  q.Get("urgency"),
		Damage:   q.Get("damage"),
		Needs:    q.Get("needs"),
		Phone:    q.Get("phone"),
	}
	rows := h.reports.SearchLogs(filters, q.Get("q"))
	respondJSON(w, http.StatusOK, map[string]any{
		"mode":    h.reports.SearchMode(),
		"count":   len(rows),
		"reports": rows,
	})
}

// MapPoints handles GET /api/v1/reports/map: only rows whose location
// parses to two finite coordinates.
func (h *ReportHandler) MapPoints(w http.ResponseWriter, r *http.Request) {
	points := h.reports.MapPoints()
	respondJSON(w, http.StatusOK, map[string]any{
		"count":  len(points),
		"points": points,
	})
}

// respondFetchError maps the fetch taxonomy to HTTP responses. The
// access failure keeps its remediation message; everything else is a
// generic upstream failure.
func respondFetchError(w http.ResponseWriter, err error) {
	var accessErr *sheets.AccessError
	if errors.As(err, &accessErr) {
		respondError(w, http.StatusBadGateway, accessErr.Error())
		return
	}
	var httpErr *sheets.HTTPError
	if errors.As(err, &httpErr) {
		respondError(w, http.StatusBadGateway, httpErr.Error())
		return
	}
	respondError(w, http.StatusBadGateway, "failed to reach the spreadsheet endpoint")
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
