package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pushkit/reporting"
	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

// EnqueueReport stores the report as a Hash and adds it to the due
// Sorted Set scored by RunAt.
func (s *Store) EnqueueReport(ctx context.Context, r *report.Report) error {
	rID := r.ID.String()
	key := reportKey(rID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("reporting/redis: enqueue check exists: %w", err)
	}
	if exists > 0 {
		return reporting.ErrReportExists
	}

	fields, err := reportToMap(r)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.SAdd(ctx, reportIDsKey, rID)
	pipe.ZAdd(ctx, dueKey, redis.Z{Score: float64(r.RunAt.Unix()), Member: rID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reporting/redis: enqueue report: %w", err)
	}
	return nil
}

// DequeueDue claims up to limit reports whose RunAt has passed. A report
// is claimed by removing it from the due set; the ZRem result arbitrates
// racing workers.
func (s *Store) DequeueDue(ctx context.Context, limit int) ([]*report.Report, error) {
	now := time.Now().UTC()

	ids, err := s.client.ZRangeByScore(ctx, dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("reporting/redis: dequeue range: %w", err)
	}

	var claimed []*report.Report
	for _, rID := range ids {
		removed, err := s.client.ZRem(ctx, dueKey, rID).Result()
		if err != nil {
			return nil, fmt.Errorf("reporting/redis: dequeue claim: %w", err)
		}
		if removed == 0 {
			// Another worker won the claim.
			continue
		}

		key := reportKey(rID)
		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, key,
			"state", string(report.StateActive),
			"updated_at", now.Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, activeKey, redis.Z{Score: float64(now.Unix()), Member: rID})
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("reporting/redis: dequeue update: %w", err)
		}

		r, err := s.getByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, r)
	}
	return claimed, nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	return s.getByKey(ctx, reportKey(reportID.String()))
}

// UpdateReport persists changes to an existing report. Reports back in
// pending or retrying state re-enter the due set at their new RunAt.
func (s *Store) UpdateReport(ctx context.Context, r *report.Report) error {
	rID := r.ID.String()
	key := reportKey(rID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("reporting/redis: update check exists: %w", err)
	}
	if exists == 0 {
		return reporting.ErrReportNotFound
	}

	fields, err := reportToMap(r)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if r.State == report.StatePending || r.State == report.StateRetrying {
		pipe.ZAdd(ctx, dueKey, redis.Z{Score: float64(r.RunAt.Unix()), Member: rID})
		pipe.ZRem(ctx, activeKey, rID)
	} else {
		pipe.ZRem(ctx, dueKey, rID)
		pipe.ZAdd(ctx, activeKey, redis.Z{Score: float64(r.UpdatedAt.Unix()), Member: rID})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reporting/redis: update report: %w", err)
	}
	return nil
}

// DeleteReport removes a report by ID. Unknown IDs are ignored.
func (s *Store) DeleteReport(ctx context.Context, reportID id.ReportID) error {
	rID := reportID.String()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, reportKey(rID))
	pipe.ZRem(ctx, dueKey, rID)
	pipe.ZRem(ctx, activeKey, rID)
	pipe.SRem(ctx, reportIDsKey, rID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reporting/redis: delete report: %w", err)
	}
	return nil
}

// ReapStale returns active reports claimed longer than olderThan ago,
// oldest first. A report deleted between the range read and the hash
// fetch is skipped.
func (s *Store) ReapStale(ctx context.Context, olderThan time.Duration) ([]*report.Report, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	ids, err := s.client.ZRangeByScore(ctx, activeKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("reporting/redis: reap range: %w", err)
	}

	var stale []*report.Report
	for _, rID := range ids {
		r, err := s.getByKey(ctx, reportKey(rID))
		if errors.Is(err, reporting.ErrReportNotFound) {
			s.client.ZRem(ctx, activeKey, rID)
			continue
		}
		if err != nil {
			return nil, err
		}
		stale = append(stale, r)
	}
	return stale, nil
}

// CountReports returns the number of persisted reports.
func (s *Store) CountReports(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, reportIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reporting/redis: count reports: %w", err)
	}
	return n, nil
}

func (s *Store) getByKey(ctx context.Context, key string) (*report.Report, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reporting/redis: get report: %w", err)
	}
	if len(fields) == 0 {
		return nil, reporting.ErrReportNotFound
	}
	return reportFromMap(fields)
}

// reportToMap flattens a report into Redis hash fields. The payload is a
// single msgpack blob — its keys stay opaque to Redis.
func reportToMap(r *report.Report) (map[string]any, error) {
	blob, err := payload.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":           r.ID.String(),
		"payload":      blob,
		"state":        string(r.State),
		"attempts":     r.Attempts,
		"max_attempts": r.MaxAttempts,
		"last_error":   r.LastError,
		"run_at":       r.RunAt.Format(time.RFC3339Nano),
		"created_at":   r.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   r.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

// reportFromMap rebuilds a report from Redis hash fields.
func reportFromMap(fields map[string]string) (*report.Report, error) {
	rID, err := id.ParseReportID(fields["id"])
	if err != nil {
		return nil, fmt.Errorf("reporting/redis: parse report id: %w", err)
	}

	p, err := payload.Unmarshal([]byte(fields["payload"]))
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		ID:        rID,
		Payload:   p,
		State:     report.State(fields["state"]),
		LastError: fields["last_error"],
	}
	r.Attempts, _ = strconv.Atoi(fields["attempts"])
	r.MaxAttempts, _ = strconv.Atoi(fields["max_attempts"])

	for _, ts := range []struct {
		field string
		dst   *time.Time
	}{
		{"run_at", &r.RunAt},
		{"created_at", &r.CreatedAt},
		{"updated_at", &r.UpdatedAt},
	} {
		if v := fields[ts.field]; v != "" {
			parsed, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("reporting/redis: parse %s: %w", ts.field, err)
			}
			*ts.dst = parsed
		}
	}
	return r, nil
}
