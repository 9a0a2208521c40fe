// Package records fetches rows from the third-party tabular-data API that
// backs the results page. The API is base+table scoped, bearer-token
// authorized, and paginates via a continuation cursor (`offset`).
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/netsentry/netsentry/internal/metrics"
)

// Record is one row of a remote table. Field names and types are dynamic;
// the display column set is the union across all fetched records.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// Client talks to the tabular-data API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a tabular-data API client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ListPage fetches a single page of records. An empty offset requests the
// first page; the returned offset is the continuation cursor for the next
// page, or empty when the table is exhausted.
func (c *Client) ListPage(ctx context.Context, baseID, table, offset string) ([]Record, string, error) {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(baseID), url.PathEscape(table))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFetchErrors.Inc()
		return nil, "", fmt.Errorf("listing records: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordFetchErrors.Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("listing records: %s returned %d: %s", table, resp.StatusCode, string(body))
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		metrics.RecordFetchErrors.Inc()
		return nil, "", fmt.Errorf("decoding records page: %w", err)
	}

	metrics.RecordPagesFetched.Inc()
	return page.Records, page.Offset, nil
}

// FetchAll retrieves every row of a table, chaining continuation cursors
// until a page comes back without one. Pages are fetched strictly
// sequentially and any failure, including on the first page, aborts the
// whole fetch.
func (c *Client) FetchAll(ctx context.Context, baseID, table string) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		page, next, err := c.ListPage(ctx, baseID, table, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		offset = next
	}
}
