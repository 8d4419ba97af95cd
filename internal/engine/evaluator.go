package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

// Evaluator applies the auto-resolve gates to a single recommendation and
// produces a provisional decision. It never fails: a recommendation whose
// issue is absent from the batch yields a synthetic escalation instead.
type Evaluator struct {
	cfg      Config
	logger   *slog.Logger
	critical map[string]struct{}
}

// NewEvaluator constructs an evaluator for the supplied engine configuration.
func NewEvaluator(cfg Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	critical := make(map[string]struct{}, len(cfg.CriticalServices))
	for _, svc := range cfg.CriticalServices {
		if svc == "" {
			continue
		}
		critical[svc] = struct{}{}
	}
	return &Evaluator{cfg: cfg, logger: logger, critical: critical}
}

// Evaluate decides the disposition for one recommendation given the batch's
// issue set. The supplied time is used for decision timestamps and the
// business-hours check so results are reproducible under test.
func (e *Evaluator) Evaluate(rec models.Recommendation, issues map[string]models.Issue, now time.Time) models.Decision {
	issue, ok := issues[rec.IssueID]
	if !ok {
		e.logger.Warn("issue not found for recommendation", slog.String("issue_id", rec.IssueID))
		return e.escalationDecision(rec, fmt.Sprintf("issue %s not found", rec.IssueID), now)
	}

	confidenceOK := rec.ConfidenceScore >= e.cfg.ConfidenceThreshold
	severityOK := severityRiskAcceptable(issue, rec)
	businessOK := e.businessImpactAcceptable(issue, rec, now)
	technicalOK := e.technicallyFeasible(rec)

	var (
		outcome      models.DecisionOutcome
		autoApproved bool
		reasoning    string
	)
	switch {
	case confidenceOK && severityOK && businessOK && technicalOK:
		outcome = models.OutcomeAutoResolve
		autoApproved = true
		reasoning = fmt.Sprintf("all checks passed: confidence=%.2f, severity=%s", rec.ConfidenceScore, issue.Severity)
	case rec.ConfidenceScore >= 0.6 && issue.Severity != models.SeverityCritical:
		outcome = models.OutcomeScheduleMaintenance
		reasoning = fmt.Sprintf("medium confidence: confidence=%.2f, severity=%s, scheduling for maintenance window", rec.ConfidenceScore, issue.Severity)
	default:
		outcome = models.OutcomeEscalateHuman
		reasoning = fmt.Sprintf("failed checks: confidence=%.2f, severity=%s", rec.ConfidenceScore, issue.Severity)
	}

	decision := models.Decision{
		ID:                  fmt.Sprintf("dec-%d-%s", now.UnixNano(), rec.IssueID),
		IssueID:             rec.IssueID,
		Recommendation:      rec,
		Outcome:             outcome,
		Confidence:          rec.ConfidenceScore,
		Reasoning:           reasoning,
		Timestamp:           now,
		AutoApproved:        autoApproved,
		EstimatedCompletion: now.Add(time.Duration(rec.TimeEstimate) * time.Minute),
	}

	e.logger.Info("decision made",
		slog.String("issue_id", rec.IssueID),
		slog.String("outcome", string(outcome)),
		slog.Float64("confidence", rec.ConfidenceScore))

	return decision
}

// severityRiskAcceptable checks whether issue severity and recommendation
// confidence are compatible with autonomous resolution. Critical issues need
// near-certain confidence; high severity needs elevated confidence.
func severityRiskAcceptable(issue models.Issue, rec models.Recommendation) bool {
	switch issue.Severity {
	case models.SeverityCritical:
		return rec.ConfidenceScore >= 0.95
	case models.SeverityHigh:
		return rec.ConfidenceScore >= 0.85
	default:
		return true
	}
}

// businessImpactAcceptable enforces stricter gating when critical services
// are affected and, optionally, restricts autonomous action on severe issues
// to business hours (09:00-17:00 local, inclusive).
func (e *Evaluator) businessImpactAcceptable(issue models.Issue, rec models.Recommendation, now time.Time) bool {
	for _, svc := range issue.AffectedServices {
		if _, ok := e.critical[svc]; ok {
			safe := rec.ActionType == models.ActionScaleUp || rec.ActionType == models.ActionConfigurationChange
			return safe && rec.ConfidenceScore >= 0.9
		}
	}

	if e.cfg.BusinessHoursOnly {
		hour := now.Hour()
		inBusinessHours := hour >= 9 && hour <= 17
		if !inBusinessHours && (issue.Severity == models.SeverityHigh || issue.Severity == models.SeverityCritical) {
			return false
		}
	}

	return true
}

// technicallyFeasible classifies the action type: scale-up, configuration
// changes and restarts are safe to automate; rollbacks and code fixes need
// high confidence; everything else requires a human. Prerequisites are
// informational only and are never verified against external state.
func (e *Evaluator) technicallyFeasible(rec models.Recommendation) bool {
	if len(rec.Prerequisites) > 0 {
		e.logger.Info("prerequisites required",
			slog.String("issue_id", rec.IssueID),
			slog.String("prerequisites", strings.Join(rec.Prerequisites, ",")))
	}

	switch rec.ActionType {
	case models.ActionRollback, models.ActionCodeFix:
		return rec.ConfidenceScore >= 0.9
	case models.ActionScaleUp, models.ActionConfigurationChange, models.ActionRestartService:
		return true
	default:
		return false
	}
}

// escalationDecision synthesises an escalate-human decision for the missing
// issue error path. Human review is assumed to take two hours.
func (e *Evaluator) escalationDecision(rec models.Recommendation, reason string, now time.Time) models.Decision {
	return models.Decision{
		ID:                  fmt.Sprintf("esc-%d-%s", now.UnixNano(), rec.IssueID),
		IssueID:             rec.IssueID,
		Recommendation:      rec,
		Outcome:             models.OutcomeEscalateHuman,
		Confidence:          0,
		Reasoning:           reason,
		Timestamp:           now,
		AutoApproved:        false,
		EstimatedCompletion: now.Add(2 * time.Hour),
		MissingIssue:        true,
	}
}
