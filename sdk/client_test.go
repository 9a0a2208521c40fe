package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendChat(t *testing.T) {
	var gotCookie string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/message" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if c, err := r.Cookie("netsentry_session"); err == nil {
			gotCookie = c.Value
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"outcome":"completed","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"done"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123")
	resp, err := c.SendChat(context.Background(), "check a@b.co")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != "completed" {
		t.Errorf("Outcome = %q", resp.Outcome)
	}
	if len(resp.Messages) != 2 {
		t.Errorf("Messages = %+v", resp.Messages)
	}
	if gotCookie != "tok123" {
		t.Errorf("session cookie = %q", gotCookie)
	}
	if gotBody["message"] != "check a@b.co" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestRecordsRefresh(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fields":["name"],"records":[{"name":"x"}],"count":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.Records(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "refresh=1" {
		t.Errorf("query = %q, want refresh=1", gotQuery)
	}
	if resp.Count != 1 || resp.Records[0]["name"] != "x" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"authentication required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Records(context.Background(), false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "authentication required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","time":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" {
		t.Errorf("Status = %q", h.Status)
	}
}
