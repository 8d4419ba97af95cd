package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ksingh-08/devops-intelligence-platform/internal/insights"
	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
	"github.com/ksingh-08/devops-intelligence-platform/internal/store"
)

// DecisionAPI defines the service operations the HTTP layer exposes.
type DecisionAPI interface {
	ProcessAnalysis(ctx context.Context, doc []byte) ([]models.Decision, models.Summary)
	Decisions(ctx context.Context, limit int) ([]models.Decision, error)
	Insights(ctx context.Context, limit int) ([]insights.ActionInsight, error)
	RecordImpact(ctx context.Context, impact store.ImpactRecord) error
	Report(ctx context.Context) (store.ImpactReport, error)
}

// DecisionView is the wire representation of one finalized decision.
type DecisionView struct {
	ID                  string  `json:"id"`
	IssueID             string  `json:"issue_id"`
	Outcome             string  `json:"outcome"`
	Confidence          float64 `json:"confidence"`
	AutoApproved        bool    `json:"auto_approved"`
	MissingIssue        bool    `json:"missing_issue"`
	Reasoning           string  `json:"reasoning"`
	ActionType          string  `json:"action_type"`
	EstimatedCompletion string  `json:"estimated_completion"`
}

// AnalysisResponse is the response body for POST /api/v1/analysis.
type AnalysisResponse struct {
	Summary   models.Summary `json:"summary"`
	Decisions []DecisionView `json:"decisions"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
	}

	decisions, summary := s.service.ProcessAnalysis(c.Request().Context(), body)
	return c.JSON(http.StatusOK, AnalysisResponse{
		Summary:   summary,
		Decisions: toDecisionViews(decisions),
	})
}

func (s *Server) handleDecisions(c echo.Context) error {
	limit := queryLimit(c, 100)
	decisions, err := s.service.Decisions(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("list decisions failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list decisions"})
	}
	return c.JSON(http.StatusOK, map[string]any{"decisions": toDecisionViews(decisions)})
}

func (s *Server) handleInsights(c echo.Context) error {
	limit := queryLimit(c, 500)
	actionInsights, err := s.service.Insights(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("mine insights failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute insights"})
	}
	if actionInsights == nil {
		actionInsights = []insights.ActionInsight{}
	}
	return c.JSON(http.StatusOK, map[string]any{"insights": actionInsights})
}

func (s *Server) handleReport(c echo.Context) error {
	report, err := s.service.Report(c.Request().Context())
	if err != nil {
		s.logger.Error("impact report failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleImpact(c echo.Context) error {
	var impact store.ImpactRecord
	if err := c.Bind(&impact); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid impact record"})
	}
	if err := s.service.RecordImpact(c.Request().Context(), impact); err != nil {
		s.logger.Error("record impact failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record impact"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "recorded"})
}

func toDecisionViews(decisions []models.Decision) []DecisionView {
	views := make([]DecisionView, 0, len(decisions))
	for _, d := range decisions {
		views = append(views, DecisionView{
			ID:                  d.ID,
			IssueID:             d.IssueID,
			Outcome:             string(d.Outcome),
			Confidence:          d.Confidence,
			AutoApproved:        d.AutoApproved,
			MissingIssue:        d.MissingIssue,
			Reasoning:           d.Reasoning,
			ActionType:          string(d.Recommendation.ActionType),
			EstimatedCompletion: d.EstimatedCompletion.UTC().Format(time.RFC3339),
		})
	}
	return views
}

func queryLimit(c echo.Context, fallback int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
