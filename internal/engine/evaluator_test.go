package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

func testIssue(id string, severity models.Severity, services ...string) models.Issue {
	return models.Issue{
		ID:               id,
		Description:      "elevated error rate",
		Severity:         severity,
		Source:           "datadog",
		Timestamp:        time.Date(2024, 5, 14, 13, 0, 0, 0, time.UTC),
		ErrorCount:       45,
		AffectedServices: services,
	}
}

func testRecommendation(issueID string, action models.ActionType, confidence float64) models.Recommendation {
	return models.Recommendation{
		IssueID:         issueID,
		ActionType:      action,
		ConfidenceScore: confidence,
		EstimatedImpact: "Reduce error rate",
		SuggestedFix:    "Scale out",
		RiskAssessment:  "Low risk",
		TimeEstimate:    5,
	}
}

func TestEvaluateDispositions(t *testing.T) {
	now := time.Date(2024, 5, 14, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		cfg          Config
		issue        models.Issue
		rec          models.Recommendation
		wantOutcome  models.DecisionOutcome
		wantApproved bool
	}{
		{
			name:         "high severity with sufficient confidence auto-resolves",
			cfg:          Config{ConfidenceThreshold: 0.8},
			issue:        testIssue("issue_001", models.SeverityHigh, "api-gateway"),
			rec:          testRecommendation("issue_001", models.ActionScaleUp, 0.85),
			wantOutcome:  models.OutcomeAutoResolve,
			wantApproved: true,
		},
		{
			name:        "critical severity below 0.95 escalates",
			cfg:         Config{ConfidenceThreshold: 0.8},
			issue:       testIssue("issue_002", models.SeverityCritical),
			rec:         testRecommendation("issue_002", models.ActionScaleUp, 0.90),
			wantOutcome: models.OutcomeEscalateHuman,
		},
		{
			name:         "critical severity at 0.95 auto-resolves",
			cfg:          Config{ConfidenceThreshold: 0.8},
			issue:        testIssue("issue_003", models.SeverityCritical),
			rec:          testRecommendation("issue_003", models.ActionRestartService, 0.95),
			wantOutcome:  models.OutcomeAutoResolve,
			wantApproved: true,
		},
		{
			name:        "risky action below 0.9 schedules maintenance",
			cfg:         Config{ConfidenceThreshold: 0.8},
			issue:       testIssue("issue_004", models.SeverityMedium),
			rec:         testRecommendation("issue_004", models.ActionRollback, 0.85),
			wantOutcome: models.OutcomeScheduleMaintenance,
		},
		{
			name:         "risky action at 0.9 auto-resolves",
			cfg:          Config{ConfidenceThreshold: 0.8},
			issue:        testIssue("issue_005", models.SeverityMedium),
			rec:          testRecommendation("issue_005", models.ActionRollback, 0.92),
			wantOutcome:  models.OutcomeAutoResolve,
			wantApproved: true,
		},
		{
			name:        "manual review action never auto-resolves",
			cfg:         Config{ConfidenceThreshold: 0.8},
			issue:       testIssue("issue_006", models.SeverityLow),
			rec:         testRecommendation("issue_006", models.ActionManualReview, 0.99),
			wantOutcome: models.OutcomeScheduleMaintenance,
		},
		{
			name:        "critical service requires safe action",
			cfg:         Config{ConfidenceThreshold: 0.8, CriticalServices: []string{"payment-service"}},
			issue:       testIssue("issue_007", models.SeverityMedium, "payment-service"),
			rec:         testRecommendation("issue_007", models.ActionRestartService, 0.95),
			wantOutcome: models.OutcomeScheduleMaintenance,
		},
		{
			name:         "critical service with safe action and 0.9 confidence auto-resolves",
			cfg:          Config{ConfidenceThreshold: 0.8, CriticalServices: []string{"payment-service"}},
			issue:        testIssue("issue_008", models.SeverityMedium, "payment-service"),
			rec:          testRecommendation("issue_008", models.ActionScaleUp, 0.92),
			wantOutcome:  models.OutcomeAutoResolve,
			wantApproved: true,
		},
		{
			name:        "low confidence escalates",
			cfg:         Config{ConfidenceThreshold: 0.8},
			issue:       testIssue("issue_009", models.SeverityMedium),
			rec:         testRecommendation("issue_009", models.ActionScaleUp, 0.4),
			wantOutcome: models.OutcomeEscalateHuman,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := NewEvaluator(tc.cfg.withDefaults(), nil)
			issues := map[string]models.Issue{tc.issue.ID: tc.issue}

			decision := evaluator.Evaluate(tc.rec, issues, now)

			if decision.Outcome != tc.wantOutcome {
				t.Fatalf("outcome = %s, want %s (reasoning: %s)", decision.Outcome, tc.wantOutcome, decision.Reasoning)
			}
			if decision.AutoApproved != tc.wantApproved {
				t.Fatalf("auto approved = %v, want %v", decision.AutoApproved, tc.wantApproved)
			}
			if decision.MissingIssue {
				t.Fatal("missing issue flag should not be set")
			}
			if decision.Confidence != tc.rec.ConfidenceScore {
				t.Fatalf("confidence = %v, want %v", decision.Confidence, tc.rec.ConfidenceScore)
			}
		})
	}
}

func TestEvaluateBusinessHoursRestriction(t *testing.T) {
	cfg := Config{ConfidenceThreshold: 0.8, BusinessHoursOnly: true}.withDefaults()
	evaluator := NewEvaluator(cfg, nil)

	issue := testIssue("issue_001", models.SeverityHigh, "api-gateway")
	rec := testRecommendation("issue_001", models.ActionScaleUp, 0.9)
	issues := map[string]models.Issue{issue.ID: issue}

	afterHours := time.Date(2024, 5, 14, 3, 0, 0, 0, time.UTC)
	decision := evaluator.Evaluate(rec, issues, afterHours)
	if decision.Outcome != models.OutcomeScheduleMaintenance {
		t.Fatalf("after-hours outcome = %s, want %s", decision.Outcome, models.OutcomeScheduleMaintenance)
	}

	duringHours := time.Date(2024, 5, 14, 14, 0, 0, 0, time.UTC)
	decision = evaluator.Evaluate(rec, issues, duringHours)
	if decision.Outcome != models.OutcomeAutoResolve {
		t.Fatalf("business-hours outcome = %s, want %s", decision.Outcome, models.OutcomeAutoResolve)
	}
}

func TestEvaluateMissingIssue(t *testing.T) {
	evaluator := NewEvaluator(Config{}.withDefaults(), nil)
	now := time.Date(2024, 5, 14, 14, 0, 0, 0, time.UTC)

	rec := testRecommendation("issue_404", models.ActionScaleUp, 0.95)
	decision := evaluator.Evaluate(rec, map[string]models.Issue{}, now)

	if decision.Outcome != models.OutcomeEscalateHuman {
		t.Fatalf("outcome = %s, want %s", decision.Outcome, models.OutcomeEscalateHuman)
	}
	if !decision.MissingIssue {
		t.Fatal("missing issue flag should be set")
	}
	if decision.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", decision.Confidence)
	}
	if decision.AutoApproved {
		t.Fatal("synthetic escalations must not be auto-approved")
	}
	if got, want := decision.EstimatedCompletion, now.Add(2*time.Hour); !got.Equal(want) {
		t.Fatalf("estimated completion = %v, want %v", got, want)
	}
}

func TestEvaluateTimestampsAndReasoning(t *testing.T) {
	evaluator := NewEvaluator(Config{}.withDefaults(), nil)
	now := time.Date(2024, 5, 14, 14, 0, 0, 0, time.UTC)

	issue := testIssue("issue_001", models.SeverityHigh)
	rec := testRecommendation("issue_001", models.ActionScaleUp, 0.85)
	rec.TimeEstimate = 25

	decision := evaluator.Evaluate(rec, map[string]models.Issue{issue.ID: issue}, now)

	if !decision.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", decision.Timestamp, now)
	}
	if got, want := decision.EstimatedCompletion, now.Add(25*time.Minute); !got.Equal(want) {
		t.Fatalf("estimated completion = %v, want %v", got, want)
	}
	if !strings.Contains(decision.Reasoning, "0.85") {
		t.Fatalf("reasoning missing confidence: %s", decision.Reasoning)
	}
	if !strings.Contains(decision.Reasoning, "high") {
		t.Fatalf("reasoning missing severity: %s", decision.Reasoning)
	}
}
