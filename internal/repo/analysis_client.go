// Package repo contains clients for external collaborators of the decision
// engine.
package repo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ksingh-08/devops-intelligence-platform/internal/utils"
)

// AnalysisClient fetches pending analysis documents from the AI analysis
// producer. The document body is opaque here; parsing belongs to the payload
// package.
type AnalysisClient struct {
	baseURL      string
	analysisPath string
	httpClient   *http.Client
}

// NewAnalysisClient constructs a client targeting the configured producer.
func NewAnalysisClient(baseURL, analysisPath string, timeout time.Duration) *AnalysisClient {
	return &AnalysisClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		analysisPath: analysisPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPendingAnalysis retrieves the next analysis document, or nil when the
// producer has nothing pending (HTTP 204).
func (c *AnalysisClient) FetchPendingAnalysis(ctx context.Context) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("analysis client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("producer base URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.analysisURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewAppError("producer.fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewAppError("producer.fetch", fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewAppError("producer.fetch", "read analysis document", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func (c *AnalysisClient) analysisURL() string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(c.analysisPath, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}
