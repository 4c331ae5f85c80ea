package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/form"
	"github.com/miidani/field-server/internal/hierarchy"
	"github.com/miidani/field-server/internal/models"
	"github.com/miidani/field-server/internal/rank"
	"github.com/miidani/field-server/internal/sheets"
)

// ReportService orchestrates the sheet feeds, the filter engine, and the
// dashboard search for the HTTP layer.
type ReportService struct {
	store      *SnapshotStore
	client     *sheets.Client
	engine     *hierarchy.Engine
	searchMode rank.Mode
	adminURL   string
	logURL     string
	logger     *zap.SugaredLogger
}

// NewReportService creates a report service.
func NewReportService(store *SnapshotStore, client *sheets.Client, engine *hierarchy.Engine,
	searchMode rank.Mode, adminURL, logURL string, logger *zap.SugaredLogger) *ReportService {
	return &ReportService{
		store:      store,
		client:     client,
		engine:     engine,
		searchMode: searchMode,
		adminURL:   adminURL,
		logURL:     logURL,
		logger:     logger,
	}
}

// RefreshAdminData fetches, parses, and atomically swaps in the
// administrative hierarchy. The previous snapshot survives a failed
// fetch, so the form stays usable on stale data.
func (s *ReportService) RefreshAdminData(ctx context.Context) error {
	s.store.setAdminLoading(true)
	defer s.store.setAdminLoading(false)

	records, err := s.client.FetchCSV(ctx, s.adminURL)
	if err != nil {
		s.logger.Errorw("Administrative data refresh failed", "error", err)
		return err
	}

	rows, warnings := sheets.MapAdminRows(records)
	for _, w := range warnings {
		s.logger.Warnw("Short row in administrative feed", "detail", w.String())
	}
	s.store.ReplaceAdminRows(rows)

	s.logger.Infow("Administrative data refreshed", "rows", len(rows), "warnings", len(warnings))
	return nil
}

// RefreshLogs fetches, parses, and atomically swaps in the submission log.
func (s *ReportService) RefreshLogs(ctx context.Context) error {
	s.store.setLogsLoading(true)
	defer s.store.setLogsLoading(false)

	records, err := s.client.FetchCSV(ctx, s.logURL)
	if err != nil {
		s.logger.Errorw("Submission log refresh failed", "error", err)
		return err
	}

	rows, warnings := sheets.MapSubmissionRows(records)
	for _, w := range warnings {
		s.logger.Warnw("Short row in submission log", "detail", w.String())
	}
	s.store.ReplaceLogRows(rows)

	s.logger.Infow("Submission log refreshed", "rows", len(rows), "warnings", len(warnings))
	return nil
}

// Options derives the cascading select options for a selection.
func (s *ReportService) Options(sel hierarchy.Selection) hierarchy.Options {
	return s.engine.Options(s.store.AdminRows(), sel)
}

// SearchLogs applies the configured dashboard search mode. In rank mode
// the free-text query is ignored and the per-field filters re-order the
// full log; in filter mode the per-field filters are ignored and the
// query strictly hides non-matching rows.
func (s *ReportService) SearchLogs(filters models.SearchFilters, query string) []models.SubmissionRow {
	logs := s.store.LogRows()
	if s.searchMode == rank.ModeFilter {
		return rank.Filter(logs, query)
	}
	return rank.Rank(logs, filters)
}

// SearchMode exposes the configured mode so the handler can shape its
// response metadata.
func (s *ReportService) SearchMode() rank.Mode {
	return s.searchMode
}

// MapPoints returns the plottable subset of the submission log. Rows
// whose location string does not parse to two finite coordinates are
// skipped here but still appear in the tabular dashboard.
func (s *ReportService) MapPoints() []models.MapPoint {
	logs := s.store.LogRows()
	points := make([]models.MapPoint, 0, len(logs))
	for _, row := range logs {
		lat, lng, ok := parseLocationXY(row.LocationXY)
		if !ok {
			continue
		}
		points = append(points, models.MapPoint{
			Latitude:  lat,
			Longitude: lng,
			Severity:  models.SeverityFromUrgency(row.Urgency),
			Douar:     row.Douar,
			Commune:   row.Commune,
			Province:  row.Province,
			Urgency:   row.Urgency,
			Damage:    row.Damage,
			Needs:     row.Needs,
			Phone:     row.Phone,
		})
	}
	return points
}

// Submit validates the draft and forwards it to the write endpoint. The
// validation failure is caught before any network call.
func (s *ReportService) Submit(ctx context.Context, draft models.ReportDraft) (*models.SubmissionAck, error) {
	if err := form.Validate(draft); err != nil {
		return nil, err
	}
	return s.client.Submit(ctx, draft)
}

// parseLocationXY splits a "lat,lng" string into two finite floats.
func parseLocationXY(raw string) (lat, lng float64, ok bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) < 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	return lat, lng, true
}
