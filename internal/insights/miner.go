// Package insights mines aggregate effectiveness statistics from decision
// history, showing how each action type performs under the gating rules.
package insights

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

// ActionInsight summarises decision outcomes for one action type.
type ActionInsight struct {
	ActionType      models.ActionType `json:"action_type"`
	Decisions       int               `json:"decisions"`
	AutoResolved    int               `json:"auto_resolved"`
	Escalated       int               `json:"escalated"`
	Scheduled       int               `json:"scheduled"`
	AutoResolveRate float64           `json:"auto_resolve_rate"`
	AvgConfidence   float64           `json:"avg_confidence"`
	LastSeen        time.Time         `json:"last_seen"`
}

// Miner computes frequency-based insights from decision history.
type Miner struct {
	logger *slog.Logger
}

// NewMiner constructs a Miner.
func NewMiner(logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{logger: logger}
}

// Mine aggregates decisions per action type, most frequent first. Missing-issue
// escalations are skipped since they carry no meaningful action signal.
func (m *Miner) Mine(decisions []models.Decision) []ActionInsight {
	if len(decisions) == 0 {
		return nil
	}

	stats := make(map[models.ActionType]*actionAggregate)
	skipped := 0
	for _, d := range decisions {
		if d.MissingIssue {
			skipped++
			continue
		}
		agg, ok := stats[d.Recommendation.ActionType]
		if !ok {
			agg = &actionAggregate{}
			stats[d.Recommendation.ActionType] = agg
		}
		agg.count++
		agg.confidence += d.Confidence
		if d.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = d.Timestamp
		}
		switch d.Outcome {
		case models.OutcomeAutoResolve:
			agg.autoResolved++
		case models.OutcomeEscalateHuman:
			agg.escalated++
		case models.OutcomeScheduleMaintenance:
			agg.scheduled++
		}
	}

	if skipped > 0 {
		m.logger.Debug("skipped missing-issue escalations", slog.Int("count", skipped))
	}

	insightList := make([]ActionInsight, 0, len(stats))
	for action, agg := range stats {
		insightList = append(insightList, ActionInsight{
			ActionType:      action,
			Decisions:       agg.count,
			AutoResolved:    agg.autoResolved,
			Escalated:       agg.escalated,
			Scheduled:       agg.scheduled,
			AutoResolveRate: math.Round(float64(agg.autoResolved)/float64(agg.count)*1000) / 1000,
			AvgConfidence:   math.Round(agg.confidence/float64(agg.count)*1000) / 1000,
			LastSeen:        agg.lastSeen,
		})
	}

	sort.Slice(insightList, func(i, j int) bool {
		if insightList[i].Decisions != insightList[j].Decisions {
			return insightList[i].Decisions > insightList[j].Decisions
		}
		return insightList[i].ActionType < insightList[j].ActionType
	})

	return insightList
}

type actionAggregate struct {
	count        int
	autoResolved int
	escalated    int
	scheduled    int
	confidence   float64
	lastSeen     time.Time
}
