// Package sdk provides a Go client for the netsentry dashboard API.
//
// Basic usage:
//
//	c := sdk.NewClient("http://localhost:8080", sessionToken)
//	resp, err := c.SendChat(ctx, "investigate dana.webb@corp.io")
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is returned by POST /api/chat/message.
type ChatResponse struct {
	Outcome  string        `json:"outcome"` // rejected, short_circuited, completed, failed, timed_out
	Messages []ChatMessage `json:"messages"`
	Detail   string        `json:"detail,omitempty"`
}

// RecordsResponse is returned by GET /api/records.
type RecordsResponse struct {
	Fields  []string            `json:"fields"`
	Records []map[string]string `json:"records"`
	Count   int                 `json:"count"`
}

// AlertRecord is one behavior alert.
type AlertRecord struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Employee     string  `json:"employee"`
	Email        string  `json:"email"`
	Category     string  `json:"category"`
	Severity     string  `json:"severity"`
	Message      string  `json:"message"`
	RiskScore    float64 `json:"risk_score"`
	Acknowledged int     `json:"acknowledged"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// APIError is returned for non-2xx API responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("netsentry: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Client talks to a netsentry daemon.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewClient creates a client for the dashboard API. The session token
// comes from the access-code login; pass "" for the public endpoints.
func NewClient(baseURL, sessionToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SendChat submits one chat message through the analysis pipeline.
func (c *Client) SendChat(ctx context.Context, message string) (*ChatResponse, error) {
	var resp ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat/message", map[string]string{"message": message}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetChat clears the conversation back to the seeded greeting.
func (c *Client) ResetChat(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/chat/reset", nil, nil)
}

// Records fetches the remote table rows. Set refresh to force a
// refetch past the daemon's memo.
func (c *Client) Records(ctx context.Context, refresh bool) (*RecordsResponse, error) {
	path := "/api/records"
	if refresh {
		path += "?refresh=1"
	}
	var resp RecordsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Alerts lists recorded alerts, optionally filtered by severity.
func (c *Client) Alerts(ctx context.Context, severity string) ([]AlertRecord, error) {
	path := "/api/alerts"
	if severity != "" {
		path += "?severity=" + severity
	}
	var resp struct {
		Alerts []AlertRecord `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// Health checks daemon liveness. No authentication required.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	var body *bytes.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "netsentry_session", Value: c.sessionToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
