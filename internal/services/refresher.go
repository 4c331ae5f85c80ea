package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RefreshWorker periodically re-pulls both sheet feeds so the dashboard
// and form track the spreadsheet without every client triggering a fetch.
// Explicit refresh endpoints still exist; this is just the heartbeat.
type RefreshWorker struct {
	reports *ReportService
	logger  *zap.SugaredLogger
}

// NewRefreshWorker creates a refresh worker.
func NewRefreshWorker(reports *ReportService, logger *zap.SugaredLogger) *RefreshWorker {
	return &RefreshWorker{reports: reports, logger: logger}
}

// Start runs the refresh loop until ctx is canceled. The two feeds have
// no ordering dependency, so they load concurrently. A failed cycle is
// logged and retried next tick; the previous snapshots stay in place.
func (w *RefreshWorker) Start(ctx context.Context, interval time.Duration) {
	w.logger.Infow("Refresh worker started", "interval", interval)

	w.refreshBoth(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Refresh worker stopped")
			return
		case <-ticker.C:
			w.refreshBoth(ctx)
		}
	}
}

func (w *RefreshWorker) refreshBoth(ctx context.Context) {
	done := make(chan struct{}, 2)
	go func() {
		if err := w.reports.RefreshAdminData(ctx); err != nil {
			w.logger.Warnw("Periodic administrative refresh failed", "error", err)
		}
		done <- struct{}{}
	}()
	go func() {
		if err := w.reports.RefreshLogs(ctx); err != nil {
			w.logger.Warnw("Periodic log refresh failed", "error", err)
		}
		done <- struct{}{}
	}()
	<-done
	<-done
}
