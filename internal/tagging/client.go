// Package tagging is the client for the remote AI tag-extraction service.
package tagging

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

// Client calls the tagging service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Client from the ZONEGRAM_TAGGING_URL environment variable
func New() (*Client, error) {
	baseURL := os.Getenv("ZONEGRAM_TAGGING_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ZONEGRAM_TAGGING_URL environment variable not set")
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

// ExtractTags sends text to the tagging service and returns the parsed tag
// list. The service answers with a comma-joined string; entries are trimmed
// and empties dropped. Any transport or service failure wraps
// domain.ErrRemoteClassification. No retries.
func (c *Client) ExtractTags(ctx context.Context, text string) ([]string, error) {
	body, err := c.post(ctx, tagRequest{Content: text})
	if err != nil {
		return nil, err
	}

	var resp tagResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %v: %w", err, domain.ErrRemoteClassification)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("tagging service: %s: %w", resp.Error, domain.ErrRemoteClassification)
	}

	return SplitTags(resp.Tags), nil
}

// SplitTags parses a comma-joined tag string: split, trim, drop empties.
func SplitTags(joined string) []string {
	var tags []string
	for _, t := range strings.Split(joined, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (c *Client) post(ctx context.Context, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %v: %w", err, domain.ErrRemoteClassification)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, domain.ErrRemoteClassification)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tagging service (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrRemoteClassification)
	}

	return body, nil
}

type tagRequest struct {
	Content string `json:"content"`
}

type tagResponse struct {
	Tags  string `json:"tags"`
	Error string `json:"error,omitempty"`
}
