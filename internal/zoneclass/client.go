// Package zoneclass is the client for the remote AI zone-classification
// service. The service only knows the two built-in zones; custom zones are
// handled locally.
package zoneclass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"zonegram/internal/domain"
)

// Client calls the zone-classification service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client from the ZONEGRAM_CLASSIFY_URL environment variable
func New() (*Client, error) {
	baseURL := os.Getenv("ZONEGRAM_CLASSIFY_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ZONEGRAM_CLASSIFY_URL environment variable not set")
	}
	return NewWithBaseURL(baseURL), nil
}

// NewWithBaseURL creates a Client against an explicit service URL
func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ClassifyZone sends text to the classification service and returns the
// resulting built-in zone. Any transport failure, service-reported error or
// payload outside {productivity, entertainment} wraps
// domain.ErrRemoteClassification. No retries.
func (c *Client) ClassifyZone(ctx context.Context, text string) (domain.Zone, error) {
	jsonBody, err := json.Marshal(classifyRequest{Content: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %v: %w", err, domain.ErrRemoteClassification)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %v: %w", err, domain.ErrRemoteClassification)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classification service (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrRemoteClassification)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %v: %w", err, domain.ErrRemoteClassification)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("classification service: %s: %w", parsed.Error, domain.ErrRemoteClassification)
	}

	zone := domain.Normalize(parsed.Classification)
	if zone != domain.ZoneProductivity && zone != domain.ZoneEntertainment {
		return "", fmt.Errorf("unexpected classification %q: %w", parsed.Classification, domain.ErrRemoteClassification)
	}

	return zone, nil
}

type classifyRequest struct {
	Content string `json:"content"`
}

type classifyResponse struct {
	Classification string `json:"classification"`
	Error          string `json:"error,omitempty"`
}
