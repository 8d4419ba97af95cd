package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

// rateLimitWindow bounds how long a decision counts toward the hourly
// auto-approval budget.
const rateLimitWindow = time.Hour

// Arbiter enforces the hourly auto-approval cap across batches. It owns a
// rolling window of recent decisions; one Apply call is a critical section,
// so concurrent engine instances must each hold their own arbiter.
type Arbiter struct {
	mu             sync.Mutex
	maxAutoPerHour int
	history        []models.Decision
	logger         *slog.Logger
}

// NewArbiter constructs an arbiter with the given hourly auto-approval cap.
func NewArbiter(maxAutoPerHour int, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{maxAutoPerHour: maxAutoPerHour, logger: logger}
}

// Apply walks the batch in order, downgrading auto-resolve decisions that
// exceed the remaining hourly budget to scheduled maintenance. Earlier
// decisions have priority for the remaining budget. Every decision,
// downgraded or not, is appended to the rolling history. Returns the
// finalised batch and the number of downgrades applied.
func (a *Arbiter) Apply(decisions []models.Decision, now time.Time) ([]models.Decision, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.prune(now)
	recent := a.recentAutoApprovals()

	limited := 0
	added := 0
	for i := range decisions {
		d := &decisions[i]
		if d.AutoApproved && d.Outcome == models.OutcomeAutoResolve {
			if recent+added >= a.maxAutoPerHour {
				d.Outcome = models.OutcomeScheduleMaintenance
				d.AutoApproved = false
				d.Reasoning += " (rate limited - converted to scheduled maintenance)"
				limited++
				a.logger.Warn("rate limited decision", slog.String("decision_id", d.ID))
			} else {
				added++
			}
		}
		a.history = append(a.history, *d)
	}

	if limited > 0 {
		a.logger.Info("auto-approval budget exhausted",
			slog.Int("recent", recent),
			slog.Int("added", added),
			slog.Int("limited", limited))
	}

	return decisions, limited
}

// prune drops history entries that fell out of the rate-limit window.
func (a *Arbiter) prune(now time.Time) {
	cutoff := now.Add(-rateLimitWindow)
	kept := a.history[:0]
	for _, d := range a.history {
		if d.Timestamp.After(cutoff) {
			kept = append(kept, d)
		}
	}
	a.history = kept
}

func (a *Arbiter) recentAutoApprovals() int {
	count := 0
	for _, d := range a.history {
		if d.AutoApproved && d.Outcome == models.OutcomeAutoResolve {
			count++
		}
	}
	return count
}

// HistorySize reports the current rolling-history length, mainly for
// observability.
func (a *Arbiter) HistorySize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}
