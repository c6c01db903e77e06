// Package memory implements report.Store fully in memory. Safe for
// concurrent access. Intended for unit testing and development — it
// obviously provides no durability across process death.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pushkit/reporting"
	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/report"
)

// Compile-time interface check.
var _ report.Store = (*Store)(nil)

// Store is an in-memory report.Store.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
}

// New returns a new empty Store.
func New() *Store {
	return &Store{reports: make(map[string]*report.Report)}
}

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// EnqueueReport persists a new report.
func (m *Store) EnqueueReport(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := r.ID.String()
	if _, exists := m.reports[key]; exists {
		return reporting.ErrReportExists
	}
	m.reports[key] = r.Clone()
	return nil
}

// DequeueDue atomically claims up to limit due reports, sets them to
// active, and returns them ordered by RunAt.
func (m *Store) DequeueDue(_ context.Context, limit int) ([]*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()

	candidates := make([]*report.Report, 0, len(m.reports))
	for _, r := range m.reports {
		if r.State != report.StatePending && r.State != report.StateRetrying {
			continue
		}
		if r.RunAt.After(now) {
			continue
		}
		candidates = append(candidates, r)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].RunAt.Before(candidates[j].RunAt)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	claimed := make([]*report.Report, 0, len(candidates))
	for _, r := range candidates {
		r.State = report.StateActive
		r.UpdatedAt = now
		claimed = append(claimed, r.Clone())
	}
	return claimed, nil
}

// GetReport retrieves a report by ID.
func (m *Store) GetReport(_ context.Context, reportID id.ReportID) (*report.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[reportID.String()]
	if !ok {
		return nil, reporting.ErrReportNotFound
	}
	return r.Clone(), nil
}

// UpdateReport persists changes to an existing report.
func (m *Store) UpdateReport(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := r.ID.String()
	if _, ok := m.reports[key]; !ok {
		return reporting.ErrReportNotFound
	}
	m.reports[key] = r.Clone()
	return nil
}

// DeleteReport removes a report by ID. Unknown IDs are ignored.
func (m *Store) DeleteReport(_ context.Context, reportID id.ReportID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reports, reportID.String())
	return nil
}

// ReapStale returns active reports whose last update is older than
// olderThan, ordered oldest first.
func (m *Store) ReapStale(_ context.Context, olderThan time.Duration) ([]*report.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-olderThan)

	var stale []*report.Report
	for _, r := range m.reports {
		if r.State != report.StateActive {
			continue
		}
		if r.UpdatedAt.After(cutoff) {
			continue
		}
		stale = append(stale, r.Clone())
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
	})
	return stale, nil
}

// CountReports returns the number of persisted reports.
func (m *Store) CountReports(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.reports)), nil
}
