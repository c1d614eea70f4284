// Package remote calls a beta analysis service over HTTP
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/menta2k/boulder-beta/pkg/types"
)

// DefaultURL is the analysis service used when none is configured
const DefaultURL = "http://localhost:8000"

// StatusError is returned for any non-2xx answer
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("analysis service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Detail)
}

// Client implements client.BetaAnalyzer against POST {base}/api/beta
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at serverURL
func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = DefaultURL
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("invalid URL: %q needs an http or https scheme", serverURL)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Analyze sends the holds and image size and decodes the beta
func (c *Client) Analyze(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/beta", req)
	if err != nil {
		return nil, err
	}

	var resp types.BetaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse beta response: %w", err)
	}
	return &resp, nil
}

// Health reports the service health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	return body, nil
}

// errorDetail pulls the message out of a {"detail": ...} or {"error": ...}
// body, falling back to the raw text
func errorDetail(body []byte) string {
	var doc struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &doc) == nil {
		if doc.Detail != "" {
			return doc.Detail
		}
		if doc.Error != "" {
			return doc.Error
		}
	}
	return strings.TrimSpace(string(body))
}
