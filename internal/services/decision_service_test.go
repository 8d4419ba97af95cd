package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/engine"
	"github.com/ksingh-08/devops-intelligence-platform/internal/models"
	"github.com/ksingh-08/devops-intelligence-platform/internal/store"
)

type fakeStore struct {
	decisions  []models.Decision
	impacts    []store.ImpactRecord
	recordErr  error
	reportRows int
}

func (f *fakeStore) RecordDecisions(_ context.Context, decisions []models.Decision) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.decisions = append(f.decisions, decisions...)
	return nil
}

func (f *fakeStore) ListDecisions(_ context.Context, limit int) ([]models.Decision, error) {
	if limit > 0 && limit < len(f.decisions) {
		return f.decisions[:limit], nil
	}
	return f.decisions, nil
}

func (f *fakeStore) RecordImpact(_ context.Context, impact store.ImpactRecord) error {
	f.impacts = append(f.impacts, impact)
	return nil
}

func (f *fakeStore) Report(_ context.Context, _ time.Duration) (store.ImpactReport, error) {
	return store.ImpactReport{TotalIncidents: f.reportRows}, nil
}

func newTestService(t *testing.T, decisionStore DecisionStore) *DecisionService {
	t.Helper()
	eng := engine.New(engine.Config{}, nil)
	return NewDecisionService(nil, eng, decisionStore)
}

// Medium-severity payloads keep the business-hours gate out of play so the
// test does not depend on wall-clock time.
const validDoc = `{
	"issues": [
		{"id": "issue_001", "description": "High memory usage", "severity": "medium", "source": "prometheus"}
	],
	"recommendations": [
		{"issue_id": "issue_001", "action_type": "scale_up", "confidence_score": 0.9,
		 "suggested_fix": "Scale from 3 to 6 instances", "time_estimate": 5}
	]
}`

func TestProcessAnalysisPersistsDecisions(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)

	decisions, summary := svc.ProcessAnalysis(context.Background(), []byte(validDoc))

	if len(decisions) != 1 {
		t.Fatalf("len(decisions) = %d, want 1", len(decisions))
	}
	if decisions[0].Outcome != models.OutcomeAutoResolve || !decisions[0].AutoApproved {
		t.Fatalf("decision = %+v, want auto_resolve", decisions[0])
	}
	if summary.TotalDecisions != 1 || summary.AutoApproved != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(fs.decisions) != 1 {
		t.Fatalf("persisted %d decisions, want 1", len(fs.decisions))
	}
}

func TestProcessAnalysisMalformedDocument(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)

	decisions, summary := svc.ProcessAnalysis(context.Background(), []byte(`{"issues": [`))

	if len(decisions) != 0 {
		t.Fatalf("len(decisions) = %d, want 0", len(decisions))
	}
	if summary != (models.Summary{}) {
		t.Fatalf("summary = %+v, want zero value", summary)
	}
	if len(fs.decisions) != 0 {
		t.Fatalf("malformed document must not persist decisions, got %d", len(fs.decisions))
	}
}

func TestProcessAnalysisSurvivesStoreFailure(t *testing.T) {
	fs := &fakeStore{recordErr: fmt.Errorf("disk full")}
	svc := newTestService(t, fs)

	decisions, _ := svc.ProcessAnalysis(context.Background(), []byte(validDoc))
	if len(decisions) != 1 {
		t.Fatalf("persistence failure must not drop decisions, got %d", len(decisions))
	}
}

func TestProcessAnalysisWithoutStore(t *testing.T) {
	svc := newTestService(t, nil)

	decisions, summary := svc.ProcessAnalysis(context.Background(), []byte(validDoc))
	if len(decisions) != 1 || summary.TotalDecisions != 1 {
		t.Fatalf("store-less service should still decide, got %d decisions", len(decisions))
	}
}

func TestDecisionsAndInsights(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs)
	svc.ProcessAnalysis(context.Background(), []byte(validDoc))

	listed, err := svc.Decisions(context.Background(), 10)
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len(listed) = %d, want 1", len(listed))
	}

	insightList, err := svc.Insights(context.Background(), 10)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(insightList) != 1 || insightList[0].ActionType != models.ActionScaleUp {
		t.Fatalf("insights = %+v", insightList)
	}
}

func TestHistoryQueriesWithoutStore(t *testing.T) {
	svc := newTestService(t, nil)

	listed, err := svc.Decisions(context.Background(), 10)
	if err != nil || len(listed) != 0 {
		t.Fatalf("Decisions without store = (%v, %v), want empty", listed, err)
	}
	insightList, err := svc.Insights(context.Background(), 10)
	if err != nil || insightList != nil {
		t.Fatalf("Insights without store = (%v, %v), want nil", insightList, err)
	}
	if err := svc.RecordImpact(context.Background(), store.ImpactRecord{IncidentID: "x"}); err != nil {
		t.Fatalf("RecordImpact without store: %v", err)
	}
	report, err := svc.Report(context.Background())
	if err != nil || report.TotalIncidents != 0 {
		t.Fatalf("Report without store = (%+v, %v), want zero", report, err)
	}
}

func TestRecordImpactAndReport(t *testing.T) {
	fs := &fakeStore{reportRows: 3}
	svc := newTestService(t, fs)

	impact := store.ImpactRecord{IncidentID: "incident_001", CostSavings: 500, ResolutionMethod: "autonomous"}
	if err := svc.RecordImpact(context.Background(), impact); err != nil {
		t.Fatalf("RecordImpact: %v", err)
	}
	if len(fs.impacts) != 1 || fs.impacts[0].IncidentID != "incident_001" {
		t.Fatalf("impacts = %+v", fs.impacts)
	}

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalIncidents != 3 {
		t.Fatalf("report incidents = %d, want 3", report.TotalIncidents)
	}
}
