package chat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(url string, timeout time.Duration) *Pipeline {
	return NewPipeline(url, timeout, &memorySession{}, testLogger())
}

func TestSendEmptyInput(t *testing.T) {
	p := newTestPipeline("http://unused.invalid", time.Second)
	_, err := p.Send(context.Background(), "   \n\t ")
	require.Error(t, err)
	assert.Equal(t, 1, p.Transcript().Len(), "transcript should hold only the greeting")
}

func TestSendRejectsWithoutEmail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, time.Second)
	res, err := p.Send(context.Background(), "summarize this week's activity")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	require.Len(t, res.Appended, 2)
	assert.Equal(t, RoleUser, res.Appended[0].Role)
	assert.Contains(t, res.Appended[1].Content, "include an email address")
	assert.Equal(t, int32(0), calls.Load(), "rejection must not reach the webhook")
	assert.Equal(t, 3, p.Transcript().Len())
}

func TestSendShortCircuitsWorkData(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, time.Second)
	input := `check for admin@corp.io: [{"behavior":"mixed","features":{"work_pct":0.9}}]`
	res, err := p.Send(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, OutcomeShortCircuited, res.Outcome)
	assert.Contains(t, res.Appended[1].Content, "90.0% work-related")
	assert.Contains(t, res.Appended[1].Content, "No email alert sent")
	assert.Equal(t, int32(0), calls.Load(), "work data must never leave the machine")
}

func TestSendShortCircuitWinsOverMissingEmail(t *testing.T) {
	// Majority-work data is handled locally even when no email is present.
	p := newTestPipeline("http://unused.invalid", time.Second)
	res, err := p.Send(context.Background(), `[{"behavior":"work","features":{}}]`)
	require.NoError(t, err)
	assert.Equal(t, OutcomeShortCircuited, res.Outcome)
	assert.Contains(t, res.Appended[1].Content, `classified as "work"`)
}

func TestSendCompletes(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"analysis queued"}`))
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, time.Second)
	res, err := p.Send(context.Background(), "flag activity for eve@corp.io")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, "analysis queued", res.Appended[1].Content)

	assert.Equal(t, "sendMessage", got.Action)
	assert.Equal(t, "flag activity for eve@corp.io", got.ChatInput)
	assert.Equal(t, got.ChatInput, got.Message)
	assert.Equal(t, got.ChatInput, got.Query)
	assert.Equal(t, got.SessionID, got.ChatSessionKey)
	assert.True(t, strings.HasPrefix(got.SessionID, "session_"))
	assert.Equal(t, "user-"+got.SessionID, got.UserID)
	assert.Equal(t, "web", got.Context.Platform)
	assert.Equal(t, "dashboard", got.Context.Source)
	// History is the transcript before the new message: the greeting only.
	require.Len(t, got.ConversationHistory, 1)
	assert.Equal(t, RoleAssistant, got.ConversationHistory[0].Role)
	assert.Equal(t, 1, got.MessageCount)

	// Transcript: greeting, user message, assistant reply.
	assert.Equal(t, 3, p.Transcript().Len())
}

func TestSendNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, time.Second)
	res, err := p.Send(context.Background(), "check mallory@corp.io")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Appended[1].Content, "Sorry, I encountered an error")
	assert.Contains(t, res.Err.Error(), "502")
	// The optimistic user message stays in the transcript.
	assert.Equal(t, 3, p.Transcript().Len())
}

func TestSendTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := newTestPipeline(srv.URL, 50*time.Millisecond)
	res, err := p.Send(context.Background(), "check mallory@corp.io")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Appended[1].Content, "did not respond in time")
}

func TestSendSingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"ok"}`))
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, 5*time.Second)

	done := make(chan *Result, 1)
	go func() {
		res, err := p.Send(context.Background(), "first for a@b.co")
		require.NoError(t, err)
		done <- res
	}()
	<-entered

	_, err := p.Send(context.Background(), "second for a@b.co")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	res := <-done
	assert.Equal(t, OutcomeCompleted, res.Outcome)

	// The lock is released after completion.
	res2, err := p.Send(context.Background(), "third for a@b.co")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res2.Outcome)
}

func TestSetWebhookSwapsEndpoint(t *testing.T) {
	var oldCalls, newCalls atomic.Int32
	oldSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oldCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"old"}`))
	}))
	defer oldSrv.Close()
	newSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"new"}`))
	}))
	defer newSrv.Close()

	p := newTestPipeline(oldSrv.URL, time.Second)
	assert.True(t, p.WebhookConfigured())

	res, err := p.Send(context.Background(), "check a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "old", res.Appended[1].Content)

	p.SetWebhook(newSrv.URL, 2*time.Second)
	res, err = p.Send(context.Background(), "check again a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "new", res.Appended[1].Content)
	assert.Equal(t, int32(1), oldCalls.Load())
	assert.Equal(t, int32(1), newCalls.Load())
}

func TestSetWebhookDuringSends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"ok"}`))
	}))
	defer srv.Close()

	p := newTestPipeline(srv.URL, time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			p.SetWebhook(srv.URL, time.Second)
			p.WebhookConfigured()
		}
	}()
	for i := 0; i < 20; i++ {
		_, err := p.Send(context.Background(), "check a@b.co")
		require.NoError(t, err)
	}
	<-done
}

func TestTranscriptReset(t *testing.T) {
	p := newTestPipeline("http://unused.invalid", time.Second)
	_, err := p.Send(context.Background(), "no email here")
	require.NoError(t, err)
	require.Greater(t, p.Transcript().Len(), 1)

	p.Transcript().Reset()
	msgs := p.Transcript().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, Greeting, msgs[0].Content)
}
