package records

import (
	"context"
	"log/slog"
	"sync"
)

// Viewer wraps a Client with the at-most-one-concurrent-fetch policy the
// results page relies on: while a fetch for a base+table pair is in flight,
// further calls for the same pair are skipped, and a completed pair is not
// refetched until Refresh is used. This is a duplicate-call guard, not a
// cache — Refresh always goes back to the API.
type Viewer struct {
	client *Client
	logger *slog.Logger

	mu         sync.Mutex
	inFlight   bool
	lastKey    string
	lastResult []Record
	lastErr    error
}

// NewViewer creates a viewer over the given client.
func NewViewer(client *Client, logger *slog.Logger) *Viewer {
	return &Viewer{client: client, logger: logger}
}

// Fetch returns all rows for base+table. Returns (nil, false, nil) when a
// fetch for the same pair is already in flight; callers should treat that
// as "try again shortly". A repeated call for an already-fetched pair
// returns the memoized result without touching the network.
func (v *Viewer) Fetch(ctx context.Context, baseID, table string) ([]Record, bool, error) {
	key := baseID + "/" + table

	v.mu.Lock()
	if v.inFlight {
		v.mu.Unlock()
		v.logger.Debug("fetch already in flight, skipping", "key", key)
		return nil, false, nil
	}
	if v.lastKey == key {
		recs, err := v.lastResult, v.lastErr
		v.mu.Unlock()
		return recs, true, err
	}
	v.inFlight = true
	v.mu.Unlock()

	recs, err := v.client.FetchAll(ctx, baseID, table)

	v.mu.Lock()
	v.inFlight = false
	v.lastKey = key
	v.lastResult = recs
	v.lastErr = err
	v.mu.Unlock()

	if err != nil {
		v.logger.Error("record fetch failed", "key", key, "error", err)
		return nil, true, err
	}
	v.logger.Info("records fetched", "key", key, "count", len(recs))
	return recs, true, nil
}

// Refresh forces a refetch for base+table even if it was fetched before.
// The in-flight guard still applies.
func (v *Viewer) Refresh(ctx context.Context, baseID, table string) ([]Record, bool, error) {
	v.mu.Lock()
	if v.inFlight {
		v.mu.Unlock()
		return nil, false, nil
	}
	v.lastKey = ""
	v.mu.Unlock()
	return v.Fetch(ctx, baseID, table)
}
