package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/engine"
	"github.com/ksingh-08/devops-intelligence-platform/internal/insights"
	"github.com/ksingh-08/devops-intelligence-platform/internal/metrics"
	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
	"github.com/ksingh-08/devops-intelligence-platform/internal/payload"
	"github.com/ksingh-08/devops-intelligence-platform/internal/repo"
	"github.com/ksingh-08/devops-intelligence-platform/internal/store"
	"github.com/ksingh-08/devops-intelligence-platform/internal/utils"
)

// reportWindow bounds the trailing period covered by impact reports.
const reportWindow = 30 * 24 * time.Hour

// DecisionStore defines the persistence operations the service relies on.
type DecisionStore interface {
	RecordDecisions(ctx context.Context, decisions []models.Decision) error
	ListDecisions(ctx context.Context, limit int) ([]models.Decision, error)
	RecordImpact(ctx context.Context, impact store.ImpactRecord) error
	Report(ctx context.Context, window time.Duration) (store.ImpactReport, error)
}

// DecisionService is the application facade: it parses analysis documents,
// runs the decision engine, persists finalized decisions, and serves
// reporting queries.
type DecisionService struct {
	logger    *slog.Logger
	engine    *engine.Engine
	store     DecisionStore
	miner     *insights.Miner
	latencies *utils.LatencyTracker
}

// NewDecisionService constructs the service facade. The store may be nil, in
// which case decisions are not persisted and history queries return empty
// results.
func NewDecisionService(logger *slog.Logger, eng *engine.Engine, decisionStore DecisionStore) *DecisionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionService{
		logger:    logger,
		engine:    eng,
		store:     decisionStore,
		miner:     insights.NewMiner(logger),
		latencies: utils.NewLatencyTracker(1024),
	}
}

// ProcessAnalysis parses one analysis document and runs the full decision
// flow. A malformed document degrades to an empty decision list; the engine
// must never stop producing decisions because of one bad payload.
func (s *DecisionService) ProcessAnalysis(ctx context.Context, doc []byte) ([]models.Decision, models.Summary) {
	start := time.Now()

	issues, recs, err := payload.Parse(doc, start)
	if err != nil {
		metrics.ObservePayloadError()
		s.logger.Error("rejected analysis document", slog.Any("error", err))
		return []models.Decision{}, models.Summary{}
	}

	decisions, limited := s.engine.Decide(issues, recs)
	duration := time.Since(start)

	s.latencies.Observe(duration)
	metrics.ObserveBatch(duration)
	metrics.ObserveRateLimited(limited)
	for _, d := range decisions {
		metrics.ObserveDecision(string(d.Outcome))
	}

	if s.store != nil {
		if err := s.store.RecordDecisions(ctx, decisions); err != nil {
			s.logger.Warn("failed to persist decisions", slog.Any("error", err))
		}
	}

	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("batch latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}

	return decisions, engine.Summarize(decisions)
}

// Summarize recomputes statistics for an arbitrary decision list.
func (s *DecisionService) Summarize(decisions []models.Decision) models.Summary {
	return engine.Summarize(decisions)
}

// Decisions returns recent persisted decisions, newest first.
func (s *DecisionService) Decisions(ctx context.Context, limit int) ([]models.Decision, error) {
	if s.store == nil {
		return []models.Decision{}, nil
	}
	return s.store.ListDecisions(ctx, limit)
}

// Insights aggregates recent decision history into per-action effectiveness
// statistics.
func (s *DecisionService) Insights(ctx context.Context, limit int) ([]insights.ActionInsight, error) {
	if s.store == nil {
		return nil, nil
	}
	decisions, err := s.store.ListDecisions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.miner.Mine(decisions), nil
}

// RecordImpact persists one business-impact measurement.
func (s *DecisionService) RecordImpact(ctx context.Context, impact store.ImpactRecord) error {
	if s.store == nil {
		return nil
	}
	return s.store.RecordImpact(ctx, impact)
}

// Report aggregates business impact over the trailing 30 days.
func (s *DecisionService) Report(ctx context.Context) (store.ImpactReport, error) {
	if s.store == nil {
		return store.ImpactReport{}, nil
	}
	return s.store.Report(ctx, reportWindow)
}

// Poll fetches pending analysis documents from the producer at the given
// interval until the context is cancelled. Fetch failures are logged and
// retried on the next tick.
func (s *DecisionService) Poll(ctx context.Context, client *repo.AnalysisClient, interval time.Duration) {
	if client == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("producer poll loop started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			doc, err := client.FetchPendingAnalysis(ctx)
			if err != nil {
				s.logger.Warn("producer fetch failed", slog.Any("error", err))
				continue
			}
			if doc == nil {
				continue
			}
			decisions, summary := s.ProcessAnalysis(ctx, doc)
			s.logger.Info("polled batch processed",
				slog.Int("decisions", len(decisions)),
				slog.Int("auto_approved", summary.AutoApproved))
		}
	}
}

// LatencyP95 returns the current p95 batch latency.
func (s *DecisionService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
