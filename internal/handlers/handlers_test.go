package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/hierarchy"
	"github.com/miidani/field-server/internal/rank"
	"github.com/miidani/field-server/internal/services"
	"github.com/miidani/field-server/internal/sheets"
)

const adminFeed = "region,province,commune,douar\nR1,P1,C1,D1\nR1,P1,C1,D2\nR1,P2,C2,D3\n"

const logFeed = "region,province,commune,douar,urgency,damage,needs,phone,location,maplink\n" +
	"R1,P1,C1,D1,4- حرج جداً,collapsed,tents,0611111111,\"31.5,-7.1\",https://maps.example/a\n" +
	"R1,P2,C2,D3,2- متوسط,cracks,water,0622222222,bad-location,https://maps.example/b\n"

type fixture struct {
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adminFeed))
	})
	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(logFeed))
	})
	mux.HandleFunc("/script", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	logger := zap.NewNop()
	sugar := logger.Sugar()
	store := services.NewSnapshotStore()
	client := sheets.NewClient(upstream.URL+"/script", 5*time.Second, sugar)
	reportSvc := services.NewReportService(store, client, hierarchy.NewArabic(nil),
		rank.ModeRank, upstream.URL+"/admin", upstream.URL+"/logs", sugar)
	draftReg := services.NewDraftRegistry("31.791700", "-7.092600", sugar)

	reportHandler := NewReportHandler(reportSvc, store, sugar)
	draftHandler := NewDraftHandler(draftReg, reportSvc, sugar)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", reportHandler.Health)
		r.Get("/health/ready", reportHandler.Ready)
		r.Post("/refresh/hierarchy", reportHandler.RefreshHierarchy)
		r.Post("/refresh/logs", reportHandler.RefreshLogs)
		r.Get("/hierarchy/options", reportHandler.Options)
		r.Get("/reports", reportHandler.Reports)
		r.Get("/reports/map", reportHandler.MapPoints)
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", draftHandler.Create)
			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", draftHandler.Get)
				r.Patch("/", draftHandler.Update)
				r.Delete("/", draftHandler.Destroy)
				r.Post("/location", draftHandler.Locate)
				r.Post("/submit", draftHandler.Submit)
			})
		})
	})
	return &fixture{router: r}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestReadyTurnsOnAfterBothRefreshes(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/refresh/hierarchy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodPost, "/api/v1/refresh/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(3), body["admin_rows"])
}

func TestHealthExposesLoadingFlags(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "admin_loading")
	assert.Contains(t, body, "logs_loading")
	assert.Equal(t, false, body["admin_loading"])
	assert.Equal(t, false, body["logs_loading"])
}

func TestOptionsEndpointCascade(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodPost, "/api/v1/refresh/hierarchy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/v1/hierarchy/options?region=R1&province=P1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"C1"}, body["communes"])
	assert.Nil(t, body["douars"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/hierarchy/options?region=R1&province=P1&commune=C1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"D1", "D2"}, body["douars"])
}

func TestReportsAndMapEndpoints(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodPost, "/api/v1/refresh/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/v1/reports?douar=D3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rank", body["mode"])
	assert.Equal(t, float64(2), body["count"], "rank mode hides nothing")
	reports := body["reports"].([]any)
	first := reports[0].(map[string]any)
	assert.Equal(t, "D3", first["douar"])

	// The malformed-location row is in the table above but not on the map.
	rec, body = f.do(t, http.MethodGet, "/api/v1/reports/map", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestRefreshSurfacesAccessFailure(t *testing.T) {
	// A fixture whose admin feed answers with a sign-in page.
	mux := http.NewServeMux()
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Sign in to continue</body></html>"))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	sugar := zap.NewNop().Sugar()
	store := services.NewSnapshotStore()
	reportSvc := services.NewReportService(store, sheets.NewClient("", time.Second, sugar),
		hierarchy.NewArabic(nil), rank.ModeRank, upstream.URL+"/admin", upstream.URL+"/admin", sugar)
	h := NewReportHandler(reportSvc, store, sugar)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	h.RefreshHierarchy(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "not publicly readable")
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "MEDIUM", draft["niveau_urgence"])
	assert.Equal(t, "31.791700", draft["latitude"])

	// Fill the form field by field, top of the hierarchy first the way
	// the selects unlock; editing a parent after its children would
	// cascade-clear them.
	for _, step := range []struct{ field, value string }{
		{"region", "R1"},
		{"province", "P1"},
		{"commune", "C1"},
		{"nom_douar", "D1"},
		{"nature_dommages", "collapsed houses"},
		{"besoins_essentiels", "50 tents"},
		{"numero_telephone", "0612345678"},
	} {
		rec, _ = f.do(t, http.MethodPatch, "/api/v1/drafts/"+id,
			map[string]string{"field": step.field, "value": step.value})
		require.Equal(t, http.StatusOK, rec.Code, "field %s", step.field)
	}

	// Geolocation fix.
	rec, body = f.do(t, http.MethodPost, "/api/v1/drafts/"+id+"/location",
		map[string]float64{"latitude": 31.123456789, "longitude": -7.5})
	require.Equal(t, http.StatusOK, rec.Code)
	draft = body["draft"].(map[string]any)
	assert.Equal(t, "31.123457", draft["latitude"])
	assert.Equal(t, "https://www.google.com/maps?q=31.123457,-7.500000", draft["lien_maps"])

	// Submit: validated, forwarded, then the draft is cleared.
	rec, body = f.do(t, http.MethodPost, "/api/v1/drafts/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ack := body["ack"].(map[string]any)
	assert.Equal(t, true, ack["delivered"])
	cleared := body["draft"].(map[string]any)
	assert.Equal(t, "", cleared["region"])
	assert.Equal(t, "31.123457", cleared["latitude"])

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/drafts/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/api/v1/drafts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitIncompleteDraftRejectedBeforeNetwork(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/drafts/"+id+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "required fields missing")
}

func TestUpdateRejectsUnknownFieldAndBadUrgency(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodPost, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/drafts/"+id,
		map[string]string{"field": "favorite_color", "value": "blue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/drafts/"+id,
		map[string]string{"field": "niveau_urgence", "value": "EXTREME"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
