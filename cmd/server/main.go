// Package main is the entry point for the field-report server.
// It provides a REST API over the external spreadsheet that backs the
// disaster-reporting form: the administrative hierarchy and submission
// log are pulled from CSV export endpoints, held as in-memory snapshots,
// and served as cascading select options, a ranked dashboard, and map
// points; completed report drafts are forwarded to the sheet's script
// write endpoint.
//
// Architecture:
//   - The spreadsheet is the only persistence; this server holds no
//     durable state and can be restarted freely
//   - Snapshots are replaced wholesale on refresh, never merged
//   - The write endpoint's response is not a usable acknowledgment;
//     delivery is all the transport can promise
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/config"
	"github.com/miidani/field-server/internal/handlers"
	"github.com/miidani/field-server/internal/hierarchy"
	"github.com/miidani/field-server/internal/middleware"
	"github.com/miidani/field-server/internal/rank"
	"github.com/miidani/field-server/internal/services"
	"github.com/miidani/field-server/internal/sheets"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting field-report server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"search_mode", cfg.SearchMode,
		"region_allow_list", len(cfg.RegionAllowList),
	)

	// Initialize sheet client and engines
	client := sheets.NewClient(cfg.ScriptURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second, sugar)
	engine := hierarchy.NewArabic(cfg.RegionAllowList)
	store := services.NewSnapshotStore()

	// Initialize services
	reportSvc := services.NewReportService(store, client, engine,
		rank.Mode(cfg.SearchMode), cfg.AdminCSVURL, cfg.LogCSVURL, sugar)
	draftReg := services.NewDraftRegistry(cfg.DefaultLatitude, cfg.DefaultLongitude, sugar)
	refresher := services.NewRefreshWorker(reportSvc, sugar)

	// Start background refresh worker (re-pulls both sheet feeds periodically)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go refresher.Start(workerCtx, time.Duration(cfg.RefreshIntervalMinutes)*time.Minute)

	// Initialize handlers
	reportHandler := handlers.NewReportHandler(reportSvc, store, sugar)
	draftHandler := handlers.NewDraftHandler(draftReg, reportSvc, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", reportHandler.Health)
		r.Get("/health/ready", reportHandler.Ready)

		// Explicit refresh triggers (view-entry / refresh button)
		r.Route("/refresh", func(r chi.Router) {
			r.Post("/hierarchy", reportHandler.RefreshHierarchy)
			r.Post("/logs", reportHandler.RefreshLogs)
		})

		// Cascading select options for the form
		r.Get("/hierarchy/options", reportHandler.Options)

		// Dashboard and map
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.Reports)
			r.Get("/map", reportHandler.MapPoints)
		})

		// Draft lifecycle (public — no auth, matching the form)
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

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
