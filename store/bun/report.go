package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pushkit/reporting"
	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/report"
)

// EnqueueReport persists a new report in pending state.
func (s *Store) EnqueueReport(ctx context.Context, r *report.Report) error {
	m, err := toReportModel(r)
	if err != nil {
		return err
	}
	_, err = s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return reporting.ErrReportExists
		}
		return fmt.Errorf("reporting/bun: enqueue report: %w", err)
	}
	return nil
}

// DequeueDue atomically claims up to limit due reports, sets them to
// active, and returns them. Uses SELECT FOR UPDATE SKIP LOCKED for
// concurrent-safe dequeue via raw SQL.
func (s *Store) DequeueDue(ctx context.Context, limit int) ([]*report.Report, error) {
	var models []reportModel
	_, err := s.db.NewRaw(`
		WITH dequeued AS (
			UPDATE reporting_reports
			SET state = 'active', updated_at = NOW()
			WHERE id IN (
				SELECT id FROM reporting_reports
				WHERE state IN ('pending', 'retrying')
				  AND run_at <= NOW()
				ORDER BY run_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT ?0
			)
			RETURNING *
		)
		SELECT * FROM dequeued ORDER BY run_at ASC`,
		limit,
	).Exec(ctx, &models)
	if err != nil {
		return nil, fmt.Errorf("reporting/bun: dequeue due: %w", err)
	}

	reports := make([]*report.Report, 0, len(models))
	for i := range models {
		r, convErr := fromReportModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("reporting/bun: dequeue convert: %w", convErr)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	m := new(reportModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", reportID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, reporting.ErrReportNotFound
		}
		return nil, fmt.Errorf("reporting/bun: get report: %w", err)
	}
	return fromReportModel(m)
}

// UpdateReport persists changes to an existing report.
func (s *Store) UpdateReport(ctx context.Context, r *report.Report) error {
	m, err := toReportModel(r)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("reporting/bun: update report: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return reporting.ErrReportNotFound
	}
	return nil
}

// DeleteReport removes a report by ID. Unknown IDs are ignored.
func (s *Store) DeleteReport(ctx context.Context, reportID id.ReportID) error {
	_, err := s.db.NewDelete().
		TableExpr("reporting_reports").
		Where("id = ?", reportID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reporting/bun: delete report: %w", err)
	}
	return nil
}

// ReapStale returns active reports whose last update is older than
// olderThan, oldest first.
func (s *Store) ReapStale(ctx context.Context, olderThan time.Duration) ([]*report.Report, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var models []reportModel
	err := s.db.NewSelect().Model(&models).
		Where("state = ?", string(report.StateActive)).
		Where("updated_at <= ?", cutoff).
		OrderExpr("updated_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporting/bun: reap stale: %w", err)
	}

	stale := make([]*report.Report, 0, len(models))
	for i := range models {
		r, convErr := fromReportModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("reporting/bun: reap convert: %w", convErr)
		}
		stale = append(stale, r)
	}
	return stale, nil
}

// CountReports returns the number of persisted reports.
func (s *Store) CountReports(ctx context.Context) (int64, error) {
	n, err := s.db.NewSelect().Model((*reportModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("reporting/bun: count reports: %w", err)
	}
	return int64(n), nil
}
