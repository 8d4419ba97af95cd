package models

import (
	"fmt"
	"time"
)

// DecisionOutcome enumerates possible dispositions for a recommendation.
type DecisionOutcome string

const (
	OutcomeAutoResolve         DecisionOutcome = "auto_resolve"
	OutcomeScheduleMaintenance DecisionOutcome = "schedule_maintenance"
	OutcomeEscalateHuman       DecisionOutcome = "escalate_human"
	OutcomeMonitorOnly         DecisionOutcome = "monitor_only"
)

// ParseDecisionOutcome validates an outcome label.
func ParseDecisionOutcome(value string) (DecisionOutcome, error) {
	switch DecisionOutcome(value) {
	case OutcomeAutoResolve, OutcomeScheduleMaintenance, OutcomeEscalateHuman, OutcomeMonitorOnly:
		return DecisionOutcome(value), nil
	default:
		return "", fmt.Errorf("unknown decision outcome %q", value)
	}
}

// Decision is the engine's final determination for one recommendation. A
// decision is created by the evaluator and may be downgraded exactly once by
// the arbiter under rate limiting; no other mutation is permitted.
type Decision struct {
	ID                  string
	IssueID             string
	Recommendation      Recommendation
	Outcome             DecisionOutcome
	Confidence          float64
	Reasoning           string
	Timestamp           time.Time
	AutoApproved        bool
	EstimatedCompletion time.Time

	// MissingIssue marks the synthetic escalation emitted when the
	// recommendation references an issue absent from the batch,
	// distinguishing it from a legitimately low-confidence escalation.
	MissingIssue bool
}

// Summary aggregates a batch of decisions for downstream consumers.
type Summary struct {
	TotalDecisions    int     `json:"total_decisions"`
	AutoApproved      int     `json:"auto_approved"`
	Escalations       int     `json:"escalations"`
	Scheduled         int     `json:"scheduled"`
	MonitorOnly       int     `json:"monitor_only"`
	AverageConfidence float64 `json:"average_confidence"`
}
