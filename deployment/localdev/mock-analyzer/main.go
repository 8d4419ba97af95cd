package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

type issueRecord struct {
	ID               string         `json:"id"`
	Description      string         `json:"description"`
	Severity         string         `json:"severity"`
	Source           string         `json:"source"`
	Timestamp        string         `json:"timestamp"`
	ErrorCount       int            `json:"error_count"`
	AffectedServices []string       `json:"affected_services"`
	Metadata         map[string]any `json:"metadata"`
}

type recommendationRecord struct {
	IssueID         string   `json:"issue_id"`
	ActionType      string   `json:"action_type"`
	ConfidenceScore float64  `json:"confidence_score"`
	EstimatedImpact string   `json:"estimated_impact"`
	SuggestedFix    string   `json:"suggested_fix"`
	RiskAssessment  string   `json:"risk_assessment"`
	TimeEstimate    int      `json:"time_estimate"`
	Prerequisites   []string `json:"prerequisites"`
}

func main() {
	var served atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/analysis/pending", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		// Alternate between a pending document and an empty queue so the
		// poll loop exercises both paths.
		if served.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, map[string]any{
			"issues": []issueRecord{
				{
					ID:               "issue_001",
					Description:      "High error rate in payment service",
					Severity:         "high",
					Source:           "datadog",
					Timestamp:        time.Now().UTC().Format(time.RFC3339),
					ErrorCount:       45,
					AffectedServices: []string{"payment-service"},
					Metadata:         map[string]any{"error_type": "timeout", "region": "us-east-1"},
				},
			},
			"recommendations": []recommendationRecord{
				{
					IssueID:         "issue_001",
					ActionType:      "scale_up",
					ConfidenceScore: 0.85,
					EstimatedImpact: "Reduce error rate by 80%",
					SuggestedFix:    "Scale payment service from 3 to 6 instances",
					RiskAssessment:  "Low risk - scaling up is safe",
					TimeEstimate:    5,
					Prerequisites:   []string{"sufficient_capacity", "auto_scaling_enabled"},
				},
			},
		})
	})

	logger := log.New(log.Writer(), "analyzer-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":9090",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :9090")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
