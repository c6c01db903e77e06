package report

import (
	"context"
	"time"

	"github.com/pushkit/reporting/id"
)

// Store defines the persistence contract for queued reports. A store is the
// durable half of a scheduler binding: reports survive process death in it
// and are re-delivered from it after a restart.
type Store interface {
	// EnqueueReport persists a new report in pending state.
	EnqueueReport(ctx context.Context, r *Report) error

	// DequeueDue atomically claims up to limit reports whose RunAt has
	// passed, sets them to active, and returns them ordered by RunAt.
	DequeueDue(ctx context.Context, limit int) ([]*Report, error)

	// GetReport retrieves a report by ID.
	GetReport(ctx context.Context, reportID id.ReportID) (*Report, error)

	// UpdateReport persists changes to an existing report.
	UpdateReport(ctx context.Context, r *Report) error

	// DeleteReport removes a report by ID. Deleting an unknown ID is not
	// an error — success and terminal failure both discard the payload,
	// and a redelivered invocation may race its own cleanup.
	DeleteReport(ctx context.Context, reportID id.ReportID) error

	// ReapStale returns active reports whose last update is older than
	// olderThan. A claim that old means the claiming process died before
	// its outcome landed; callers return such reports to pending so they
	// are re-delivered.
	ReapStale(ctx context.Context, olderThan time.Duration) ([]*Report, error)

	// CountReports returns the number of persisted reports.
	CountReports(ctx context.Context) (int64, error)

	// Migrate prepares backend schema. No-op for schemaless backends.
	Migrate(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
