package bunstore

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/pushkit/reporting/id"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/report"
)

type reportModel struct {
	bun.BaseModel `bun:"table:reporting_reports"`

	ID          string    `bun:"id,pk"`
	Payload     []byte    `bun:"payload,notnull,type:bytea"`
	State       string    `bun:"state,notnull,default:'pending'"`
	Attempts    int       `bun:"attempts,notnull,default:0"`
	MaxAttempts int       `bun:"max_attempts,notnull,default:0"`
	LastError   string    `bun:"last_error"`
	RunAt       time.Time `bun:"run_at,notnull,default:current_timestamp"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func toReportModel(r *report.Report) (*reportModel, error) {
	blob, err := payload.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return &reportModel{
		ID:          r.ID.String(),
		Payload:     blob,
		State:       string(r.State),
		Attempts:    r.Attempts,
		MaxAttempts: r.MaxAttempts,
		LastError:   r.LastError,
		RunAt:       r.RunAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func fromReportModel(m *reportModel) (*report.Report, error) {
	parsedID, err := id.ParseReportID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("reporting/bun: parse report id %q: %w", m.ID, err)
	}

	p, err := payload.Unmarshal(m.Payload)
	if err != nil {
		return nil, err
	}

	return &report.Report{
		ID:          parsedID,
		Payload:     p,
		State:       report.State(m.State),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		LastError:   m.LastError,
		RunAt:       m.RunAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
