package models

import "fmt"

// Recommendation is an AI-generated remediation proposal for an issue. The
// IssueID is a lookup key into the batch's issue set, not an ownership
// relation.
type Recommendation struct {
	IssueID         string
	ActionType      ActionType
	ConfidenceScore float64
	EstimatedImpact string
	SuggestedFix    string
	RiskAssessment  string
	TimeEstimate    int // minutes
	Prerequisites   []string
}

// ActionType enumerates the remediation actions the agent can take.
type ActionType string

const (
	ActionCodeFix             ActionType = "code_fix"
	ActionScaleUp             ActionType = "scale_up"
	ActionScaleDown           ActionType = "scale_down"
	ActionRestartService      ActionType = "restart_service"
	ActionRollback            ActionType = "rollback"
	ActionConfigurationChange ActionType = "configuration_change"
	ActionManualReview        ActionType = "manual_review"
)

// ParseActionType validates an action label. Unknown values are rejected at
// the input boundary rather than defaulted.
func ParseActionType(value string) (ActionType, error) {
	switch ActionType(value) {
	case ActionCodeFix, ActionScaleUp, ActionScaleDown, ActionRestartService,
		ActionRollback, ActionConfigurationChange, ActionManualReview:
		return ActionType(value), nil
	default:
		return "", fmt.Errorf("unknown action type %q", value)
	}
}
