// Package store persists finalized decisions and business-impact records so
// downstream reporting survives restarts. It is a sink only: the engine core
// never reads decision state back from here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
)

// Store provides SQLite-backed persistence for decisions and impact metrics.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	issue_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	confidence REAL NOT NULL,
	auto_approved INTEGER NOT NULL,
	missing_issue INTEGER NOT NULL,
	reasoning TEXT NOT NULL,
	action_type TEXT NOT NULL,
	suggested_fix TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	estimated_completion INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions (created_at);

CREATE TABLE IF NOT EXISTS business_impact (
	incident_id TEXT PRIMARY KEY,
	response_time_before REAL NOT NULL,
	response_time_after REAL NOT NULL,
	cost_savings REAL NOT NULL,
	uptime_impact REAL NOT NULL,
	confidence_score REAL NOT NULL,
	resolution_method TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Open opens (or creates) the store at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordDecisions persists a batch of finalized decisions in one transaction.
func (s *Store) RecordDecisions(ctx context.Context, decisions []models.Decision) error {
	if len(decisions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO decisions (
	id, issue_id, outcome, confidence, auto_approved, missing_issue,
	reasoning, action_type, suggested_fix, created_at, estimated_completion
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		_, err := stmt.ExecContext(ctx,
			d.ID,
			d.IssueID,
			string(d.Outcome),
			d.Confidence,
			boolToInt(d.AutoApproved),
			boolToInt(d.MissingIssue),
			d.Reasoning,
			string(d.Recommendation.ActionType),
			d.Recommendation.SuggestedFix,
			d.Timestamp.UTC().UnixMilli(),
			d.EstimatedCompletion.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert decision %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decisions: %w", err)
	}
	return nil
}

// ListDecisions returns the most recent decisions, newest first.
func (s *Store) ListDecisions(ctx context.Context, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, issue_id, outcome, confidence, auto_approved, missing_issue,
	reasoning, action_type, suggested_fix, created_at, estimated_completion
FROM decisions
ORDER BY created_at DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var (
			d                      models.Decision
			outcome, actionType    string
			autoApproved, missing  int
			createdAt, completedAt int64
		)
		err := rows.Scan(&d.ID, &d.IssueID, &outcome, &d.Confidence, &autoApproved, &missing,
			&d.Reasoning, &actionType, &d.Recommendation.SuggestedFix, &createdAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Outcome = models.DecisionOutcome(outcome)
		d.AutoApproved = autoApproved != 0
		d.MissingIssue = missing != 0
		d.Timestamp = time.UnixMilli(createdAt).UTC()
		d.EstimatedCompletion = time.UnixMilli(completedAt).UTC()
		d.Recommendation.IssueID = d.IssueID
		d.Recommendation.ActionType = models.ActionType(actionType)
		d.Recommendation.ConfidenceScore = d.Confidence
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}

// ImpactRecord measures the business outcome of one resolved incident.
type ImpactRecord struct {
	IncidentID         string  `json:"incident_id"`
	ResponseTimeBefore float64 `json:"response_time_before"` // hours
	ResponseTimeAfter  float64 `json:"response_time_after"`  // minutes
	CostSavings        float64 `json:"cost_savings"`
	UptimeImpact       float64 `json:"uptime_impact"`
	ConfidenceScore    float64 `json:"confidence_score"`
	ResolutionMethod   string  `json:"resolution_method"` // "autonomous" or "manual"
}

// RecordImpact upserts a business-impact measurement keyed by incident.
func (s *Store) RecordImpact(ctx context.Context, impact ImpactRecord) error {
	if impact.IncidentID == "" {
		return fmt.Errorf("incident id is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO business_impact (
	incident_id, response_time_before, response_time_after,
	cost_savings, uptime_impact, confidence_score, resolution_method, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		impact.IncidentID,
		impact.ResponseTimeBefore,
		impact.ResponseTimeAfter,
		impact.CostSavings,
		impact.UptimeImpact,
		impact.ConfidenceScore,
		impact.ResolutionMethod,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record impact %s: %w", impact.IncidentID, err)
	}
	return nil
}

// ImpactReport aggregates business-impact records over a trailing window.
type ImpactReport struct {
	TotalIncidents          int     `json:"total_incidents"`
	AutonomousCount         int     `json:"autonomous_count"`
	AutonomousRate          float64 `json:"autonomous_rate"`
	ResponseTimeImprovement float64 `json:"response_time_improvement"`
	AvgResponseBeforeHours  float64 `json:"avg_response_before_hours"`
	AvgResponseAfterMinutes float64 `json:"avg_response_after_minutes"`
	TotalCostSavings        float64 `json:"total_cost_savings"`
	AvgUptime               float64 `json:"avg_uptime"`
	AvgConfidence           float64 `json:"avg_confidence"`
}

// Report aggregates impact records created within the window ending now.
// Returns a zero-valued report when no records fall inside the window.
func (s *Store) Report(ctx context.Context, window time.Duration) (ImpactReport, error) {
	cutoff := time.Now().Add(-window).UTC().UnixMilli()

	row := s.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN resolution_method = 'autonomous' THEN 1 ELSE 0 END), 0),
	COALESCE(AVG(response_time_before), 0),
	COALESCE(AVG(response_time_after), 0),
	COALESCE(SUM(cost_savings), 0),
	COALESCE(AVG(uptime_impact), 0),
	COALESCE(AVG(confidence_score), 0)
FROM business_impact
WHERE created_at >= ?
`, cutoff)

	var report ImpactReport
	err := row.Scan(
		&report.TotalIncidents,
		&report.AutonomousCount,
		&report.AvgResponseBeforeHours,
		&report.AvgResponseAfterMinutes,
		&report.TotalCostSavings,
		&report.AvgUptime,
		&report.AvgConfidence,
	)
	if err != nil {
		return ImpactReport{}, fmt.Errorf("aggregate impact: %w", err)
	}

	if report.TotalIncidents > 0 {
		report.AutonomousRate = float64(report.AutonomousCount) / float64(report.TotalIncidents) * 100
		beforeMinutes := report.AvgResponseBeforeHours * 60
		if beforeMinutes > 0 {
			report.ResponseTimeImprovement = (beforeMinutes - report.AvgResponseAfterMinutes) / beforeMinutes * 100
		}
	}
	return report, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
