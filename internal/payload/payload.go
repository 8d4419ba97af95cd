// Package payload parses analysis documents produced by the upstream AI
// analysis workflow into domain issues and recommendations. Missing fields
// are defaulted per the producer contract; unknown enum values are rejected
// rather than silently coerced.
package payload

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
	"github.com/ksingh-08/devops-intelligence-platform/internal/utils"
)

// Document is the wire shape delivered by the analysis producer.
type Document struct {
	Issues          []IssueRecord          `json:"issues"`
	Recommendations []RecommendationRecord `json:"recommendations"`
}

// IssueRecord is one issue entry in the analysis document.
type IssueRecord struct {
	ID               string         `json:"id"`
	Description      string         `json:"description"`
	Severity         string         `json:"severity"`
	Source           string         `json:"source"`
	Timestamp        string         `json:"timestamp"`
	ErrorCount       int            `json:"error_count"`
	AffectedServices []string       `json:"affected_services"`
	Metadata         map[string]any `json:"metadata"`
}

// RecommendationRecord is one recommendation entry in the analysis document.
type RecommendationRecord struct {
	IssueID         string   `json:"issue_id"`
	ActionType      string   `json:"action_type"`
	ConfidenceScore float64  `json:"confidence_score"`
	EstimatedImpact string   `json:"estimated_impact"`
	SuggestedFix    string   `json:"suggested_fix"`
	RiskAssessment  string   `json:"risk_assessment"`
	TimeEstimate    *int     `json:"time_estimate"`
	Prerequisites   []string `json:"prerequisites"`
}

// Parse decodes an analysis document and maps it into domain types. The
// supplied time is used for defaulted issue timestamps.
func Parse(data []byte, now time.Time) (map[string]models.Issue, []models.Recommendation, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse analysis document: %w", err)
	}

	issues := make(map[string]models.Issue, len(doc.Issues))
	for i, record := range doc.Issues {
		issue, err := mapIssue(record, i, now)
		if err != nil {
			return nil, nil, err
		}
		issues[issue.ID] = issue
	}

	recs := make([]models.Recommendation, 0, len(doc.Recommendations))
	for i, record := range doc.Recommendations {
		rec, err := mapRecommendation(record, i)
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, rec)
	}

	return issues, recs, nil
}

func mapIssue(record IssueRecord, index int, now time.Time) (models.Issue, error) {
	id := record.ID
	if id == "" {
		id = fmt.Sprintf("issue_%d", index)
	}

	severity := models.SeverityMedium
	if record.Severity != "" {
		parsed, err := models.ParseSeverity(record.Severity)
		if err != nil {
			return models.Issue{}, fmt.Errorf("issue %s: %w", id, err)
		}
		severity = parsed
	}

	timestamp := now
	if record.Timestamp != "" {
		parsed, err := utils.ParseRFC3339(record.Timestamp)
		if err != nil {
			return models.Issue{}, fmt.Errorf("issue %s: %w", id, err)
		}
		timestamp = parsed
	}

	description := record.Description
	if description == "" {
		description = "Unknown issue"
	}
	source := record.Source
	if source == "" {
		source = "unknown"
	}
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return models.Issue{
		ID:               id,
		Description:      description,
		Severity:         severity,
		Source:           source,
		Timestamp:        timestamp,
		ErrorCount:       record.ErrorCount,
		AffectedServices: append([]string(nil), record.AffectedServices...),
		Metadata:         metadata,
	}, nil
}

func mapRecommendation(record RecommendationRecord, index int) (models.Recommendation, error) {
	issueID := record.IssueID
	if issueID == "" {
		issueID = "unknown"
	}

	action := models.ActionManualReview
	if record.ActionType != "" {
		parsed, err := models.ParseActionType(record.ActionType)
		if err != nil {
			return models.Recommendation{}, fmt.Errorf("recommendation %d: %w", index, err)
		}
		action = parsed
	}

	if record.ConfidenceScore < 0 || record.ConfidenceScore > 1 {
		return models.Recommendation{}, fmt.Errorf("recommendation %d: confidence %v out of range [0,1]", index, record.ConfidenceScore)
	}

	timeEstimate := 30
	if record.TimeEstimate != nil {
		if *record.TimeEstimate < 0 {
			return models.Recommendation{}, fmt.Errorf("recommendation %d: time estimate must be non-negative", index)
		}
		timeEstimate = *record.TimeEstimate
	}

	impact := record.EstimatedImpact
	if impact == "" {
		impact = "Unknown"
	}
	risk := record.RiskAssessment
	if risk == "" {
		risk = "Medium risk"
	}

	return models.Recommendation{
		IssueID:         issueID,
		ActionType:      action,
		ConfidenceScore: record.ConfidenceScore,
		EstimatedImpact: impact,
		SuggestedFix:    record.SuggestedFix,
		RiskAssessment:  risk,
		TimeEstimate:    timeEstimate,
		Prerequisites:   append([]string(nil), record.Prerequisites...),
	}, nil
}
