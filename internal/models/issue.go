package models

import (
	"fmt"
	"time"
)

// Issue represents a production issue reported by the analysis producer.
type Issue struct {
	ID               string
	Description      string
	Severity         Severity
	Source           string
	Timestamp        time.Time
	ErrorCount       int
	AffectedServices []string
	Metadata         map[string]any
}

// Severity captures impact levels, ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a severity label. Unknown values are rejected at
// the input boundary rather than defaulted.
func ParseSeverity(value string) (Severity, error) {
	switch Severity(value) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(value), nil
	default:
		return "", fmt.Errorf("unknown severity %q", value)
	}
}
