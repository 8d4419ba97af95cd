package insights

import (
	"testing"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

func decision(action models.ActionType, outcome models.DecisionOutcome, confidence float64, ts time.Time) models.Decision {
	return models.Decision{
		ID:             "dec-" + string(action),
		IssueID:        "issue_001",
		Recommendation: models.Recommendation{IssueID: "issue_001", ActionType: action, ConfidenceScore: confidence},
		Outcome:        outcome,
		Confidence:     confidence,
		Timestamp:      ts,
	}
}

func TestMineEmptyHistory(t *testing.T) {
	m := NewMiner(nil)
	if got := m.Mine(nil); got != nil {
		t.Fatalf("Mine(nil) = %v, want nil", got)
	}
}

func TestMineAggregatesPerAction(t *testing.T) {
	base := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	decisions := []models.Decision{
		decision(models.ActionScaleUp, models.OutcomeAutoResolve, 0.9, base),
		decision(models.ActionScaleUp, models.OutcomeAutoResolve, 0.85, base.Add(time.Hour)),
		decision(models.ActionScaleUp, models.OutcomeEscalateHuman, 0.5, base.Add(2*time.Hour)),
		decision(models.ActionRestartService, models.OutcomeScheduleMaintenance, 0.7, base),
	}

	insightList := NewMiner(nil).Mine(decisions)
	if len(insightList) != 2 {
		t.Fatalf("len(insights) = %d, want 2", len(insightList))
	}

	scaleUp := insightList[0]
	if scaleUp.ActionType != models.ActionScaleUp {
		t.Fatalf("most frequent action = %s, want scale_up", scaleUp.ActionType)
	}
	if scaleUp.Decisions != 3 || scaleUp.AutoResolved != 2 || scaleUp.Escalated != 1 {
		t.Fatalf("scale_up aggregate = %+v", scaleUp)
	}
	if scaleUp.AutoResolveRate != 0.667 {
		t.Fatalf("auto resolve rate = %v, want 0.667", scaleUp.AutoResolveRate)
	}
	if scaleUp.AvgConfidence != 0.75 {
		t.Fatalf("avg confidence = %v, want 0.75", scaleUp.AvgConfidence)
	}
	if !scaleUp.LastSeen.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("last seen = %v, want newest timestamp", scaleUp.LastSeen)
	}

	restart := insightList[1]
	if restart.ActionType != models.ActionRestartService || restart.Scheduled != 1 {
		t.Fatalf("restart aggregate = %+v", restart)
	}
}

func TestMineSkipsMissingIssueEscalations(t *testing.T) {
	base := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	escalation := decision(models.ActionManualReview, models.OutcomeEscalateHuman, 0, base)
	escalation.MissingIssue = true

	decisions := []models.Decision{
		escalation,
		decision(models.ActionScaleUp, models.OutcomeAutoResolve, 0.9, base),
	}

	insightList := NewMiner(nil).Mine(decisions)
	if len(insightList) != 1 {
		t.Fatalf("len(insights) = %d, want 1", len(insightList))
	}
	if insightList[0].ActionType != models.ActionScaleUp {
		t.Fatalf("action = %s, want scale_up", insightList[0].ActionType)
	}
}

func TestMineTiesSortedByActionType(t *testing.T) {
	base := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	decisions := []models.Decision{
		decision(models.ActionScaleUp, models.OutcomeAutoResolve, 0.9, base),
		decision(models.ActionCodeFix, models.OutcomeEscalateHuman, 0.6, base),
	}

	insightList := NewMiner(nil).Mine(decisions)
	if len(insightList) != 2 {
		t.Fatalf("len(insights) = %d, want 2", len(insightList))
	}
	if insightList[0].ActionType != models.ActionCodeFix {
		t.Fatalf("tie order = [%s, %s], want code_fix first", insightList[0].ActionType, insightList[1].ActionType)
	}
}
