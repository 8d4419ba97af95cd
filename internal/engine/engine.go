// Package engine implements the decision-arbitration core: per-recommendation
// gating and the stateful rate-limit pass applied across a batch.
package engine

import (
	"log/slog"
	"math"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

// Config holds the static gating and rate-limiting parameters for one engine
// instance.
type Config struct {
	ConfidenceThreshold       float64
	MaxAutoDeploymentsPerHour int
	BusinessHoursOnly         bool
	CriticalServices          []string
}

func (c Config) withDefaults() Config {
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.8
	}
	if c.MaxAutoDeploymentsPerHour <= 0 {
		c.MaxAutoDeploymentsPerHour = 5
	}
	return c
}

// Engine is the session facade: it evaluates each recommendation in input
// order and then runs the batch through the arbiter once. The arbiter's
// rolling history is owned by the engine instance; concurrent instances do
// not share state.
type Engine struct {
	cfg       Config
	logger    *slog.Logger
	evaluator *Evaluator
	arbiter   *Arbiter
	clock     func() time.Time
}

// New constructs an engine with the supplied configuration, applying the
// documented defaults for unset values.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	logger.Info("decision engine initialised",
		slog.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		slog.Int("max_auto_deployments_per_hour", cfg.MaxAutoDeploymentsPerHour))

	return &Engine{
		cfg:       cfg,
		logger:    logger,
		evaluator: NewEvaluator(cfg, logger),
		arbiter:   NewArbiter(cfg.MaxAutoDeploymentsPerHour, logger),
		clock:     time.Now,
	}
}

// Decide evaluates every recommendation against the batch's issue set and
// applies rate limiting. The returned slice preserves input order; the second
// return value reports how many decisions were downgraded by the rate limit.
// Time is read once per decision through the engine clock.
func (e *Engine) Decide(issues map[string]models.Issue, recs []models.Recommendation) ([]models.Decision, int) {
	decisions := make([]models.Decision, 0, len(recs))
	for _, rec := range recs {
		decisions = append(decisions, e.evaluator.Evaluate(rec, issues, e.clock()))
	}

	final, limited := e.arbiter.Apply(decisions, e.clock())
	e.logger.Info("batch processed",
		slog.Int("recommendations", len(recs)),
		slog.Int("decisions", len(final)),
		slog.Int("rate_limited", limited))
	return final, limited
}

// HistorySize reports the current rolling-history length.
func (e *Engine) HistorySize() int {
	return e.arbiter.HistorySize()
}

// Summarize computes batch statistics. An empty input yields zeroed values.
// The computation is pure: repeated calls over the same list are identical.
func Summarize(decisions []models.Decision) models.Summary {
	if len(decisions) == 0 {
		return models.Summary{}
	}

	var summary models.Summary
	summary.TotalDecisions = len(decisions)

	total := 0.0
	for _, d := range decisions {
		total += d.Confidence
		if d.AutoApproved {
			summary.AutoApproved++
		}
		switch d.Outcome {
		case models.OutcomeEscalateHuman:
			summary.Escalations++
		case models.OutcomeScheduleMaintenance:
			summary.Scheduled++
		}
	}
	summary.MonitorOnly = summary.TotalDecisions - summary.AutoApproved - summary.Escalations - summary.Scheduled
	summary.AverageConfidence = math.Round(total/float64(len(decisions))*1000) / 1000

	return summary
}
