// Package audit records one event per risk assessment. Events carry the
// outcome of an evaluation, never the patient's raw clinical values.
package audit

import (
	"context"
	"time"
)

// Action names the kind of evaluation that produced an event.
type Action string

const (
	ActionAssessmentEvaluated Action = "assessment_evaluated"
	ActionAssessmentRejected  Action = "assessment_rejected"
	ActionAssessmentFailed    Action = "assessment_failed"
)

// Attribution outcome recorded alongside the prediction.
const (
	AttributionOK      = "ok"
	AttributionFailed  = "failed"
	AttributionSkipped = "skipped"
)

// Event is emitted once per evaluation. Keep it transport-agnostic so stores
// and publishers can fan out.
type Event struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	RequestID         string    `json:"request_id,omitempty"`
	Subject           string    `json:"subject,omitempty"`
	Action            Action    `json:"action"`
	RiskTier          string    `json:"risk_tier,omitempty"`
	DeathProbability  float64   `json:"death_probability"`
	ContractVerified  bool      `json:"contract_verified"`
	AttributionStatus string    `json:"attribution_status,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
