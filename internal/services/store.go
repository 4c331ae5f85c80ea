// Package services contains business logic layers.
// Services are called by handlers and orchestrate the sheet adapters and
// the in-memory session state.
package services

import (
	"sync"
	"time"

	"github.com/miidani/field-server/internal/models"
)

// SnapshotStore holds the in-memory copies of the two sheet feeds. Each
// feed is replaced wholesale on refresh; there is no incremental merge.
// Concurrent refreshes are not serialized: the last write wins, an
// accepted limitation of the feed's no-ordering contract.
type SnapshotStore struct {
	mu sync.RWMutex

	adminRows   []models.AdminRow
	adminLoaded bool
	adminAt     time.Time

	logRows    []models.SubmissionRow
	logsLoaded bool
	logsAt     time.Time

	// Independent in-flight flags, one per operation, so a hung admin
	// load never blocks the log dashboard's indicator and vice versa.
	adminLoading bool
	logsLoading  bool
}

// NewSnapshotStore creates an empty store. The service stays usable with
// zero rows loaded; readers just see empty snapshots.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// ReplaceAdminRows swaps in a freshly fetched administrative set.
func (s *SnapshotStore) ReplaceAdminRows(rows []models.AdminRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminRows = rows
	s.adminLoaded = true
	s.adminAt = time.Now()
}

// ReplaceLogRows swaps in a freshly fetched submission log.
func (s *SnapshotStore) ReplaceLogRows(rows []models.SubmissionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logRows = rows
	s.logsLoaded = true
	s.logsAt = time.Now()
}

// AdminRows returns the current administrative snapshot.
func (s *SnapshotStore) AdminRows() []models.AdminRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminRows
}

// LogRows returns the current submission-log snapshot.
func (s *SnapshotStore) LogRows() []models.SubmissionRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logRows
}

// Ready reports whether both feeds have completed at least one load.
func (s *SnapshotStore) Ready() (adminLoaded, logsLoaded bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminLoaded, s.logsLoaded
}

// Counts returns the sizes of both snapshots.
func (s *SnapshotStore) Counts() (adminRows, logRows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.adminRows), len(s.logRows)
}

func (s *SnapshotStore) setAdminLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminLoading = v
}

func (s *SnapshotStore) setLogsLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logsLoading = v
}

// Loading reports the per-operation in-flight flags.
func (s *SnapshotStore) Loading() (adminLoading, logsLoading bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminLoading, s.logsLoading
}
