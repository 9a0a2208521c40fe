package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/netsentry/netsentry/internal/metrics"
)

// Outcome is the terminal state of one submission.
type Outcome string

const (
	// OutcomeRejected: input lacked an email address; no network call.
	OutcomeRejected Outcome = "rejected"
	// OutcomeShortCircuited: input classified locally as ordinary work
	// activity; no network call, no downstream alerting.
	OutcomeShortCircuited Outcome = "short_circuited"
	// OutcomeCompleted: webhook replied 2xx and a reply was extracted.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed: network error or non-2xx status.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimedOut: the dispatch exceeded the configured deadline.
	OutcomeTimedOut Outcome = "timed_out"
)

// ErrBusy is returned when a submission is already in flight.
// Submissions are single-flight per pipeline instance.
var ErrBusy = errors.New("a submission is already in flight")

// Fixed inline messages appended to the transcript.
const (
	rejectionMessage = "Please include an email address in your message. " +
		"The email can be anywhere in your text, but it's required to process your request."
	errorMessagePrefix = "Sorry, I encountered an error: "
	timeoutMessage     = "Sorry, the processing service did not respond in time. Please try again."
)

// Result describes what one submission did.
type Result struct {
	Outcome Outcome
	// Appended holds the messages this submission added to the transcript,
	// in order (the user message first).
	Appended []Message
	// Err carries the failure detail for OutcomeFailed / OutcomeTimedOut.
	Err error
}

// Pipeline runs chat submissions against the automation webhook.
// All failures are converted into inline transcript messages and are
// non-fatal to the view; nothing is retried automatically.
type Pipeline struct {
	transcript *Transcript
	sessions   SessionProvider
	client     *http.Client
	logger     *slog.Logger

	mu         sync.RWMutex // guards webhookURL and timeout (hot-reloadable)
	webhookURL string
	timeout    time.Duration

	submit chan struct{} // capacity 1: the submit lock
}

// NewPipeline creates a pipeline posting to webhookURL with the given
// per-dispatch timeout.
func NewPipeline(webhookURL string, timeout time.Duration, sessions SessionProvider, logger *slog.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := &Pipeline{
		transcript: NewTranscript(),
		sessions:   sessions,
		webhookURL: webhookURL,
		timeout:    timeout,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
		submit: make(chan struct{}, 1),
	}
	p.submit <- struct{}{}
	return p
}

// Transcript exposes the pipeline's transcript.
func (p *Pipeline) Transcript() *Transcript {
	return p.transcript
}

// SetWebhook swaps the dispatch endpoint and timeout. Safe to call while
// submissions are in flight; the next dispatch uses the new values.
func (p *Pipeline) SetWebhook(url string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p.mu.Lock()
	p.webhookURL = url
	p.timeout = timeout
	p.mu.Unlock()
}

// WebhookConfigured reports whether a dispatch endpoint is set.
func (p *Pipeline) WebhookConfigured() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.webhookURL != ""
}

// Send runs one submission through the pipeline. Empty input is a no-op.
// Returns ErrBusy while another submission is in flight; every other
// failure is reported through the Result and the transcript, not as a
// Go error.
func (p *Pipeline) Send(ctx context.Context, input string) (*Result, error) {
	text := trimmed(input)
	if text == "" {
		return nil, errors.New("empty message")
	}

	select {
	case <-p.submit:
	default:
		return nil, ErrBusy
	}
	defer func() { p.submit <- struct{}{} }()

	// Local classification runs before anything else: majority-work
	// behavior data never leaves the machine, email present or not.
	if wc, ok := ClassifyWork(text); ok {
		appended := []Message{
			{Role: RoleUser, Content: text},
			{Role: RoleAssistant, Content: workSummary(wc)},
		}
		p.transcript.Append(appended...)
		metrics.ChatSubmissions.WithLabelValues(string(OutcomeShortCircuited)).Inc()
		p.logger.Info("submission short-circuited", "by_behavior", wc.ByBehavior, "work_pct", wc.WorkPct)
		return &Result{Outcome: OutcomeShortCircuited, Appended: appended}, nil
	}

	if !HasEmail(text) {
		appended := []Message{
			{Role: RoleUser, Content: text},
			{Role: RoleAssistant, Content: rejectionMessage},
		}
		p.transcript.Append(appended...)
		metrics.ChatSubmissions.WithLabelValues(string(OutcomeRejected)).Inc()
		p.logger.Info("submission rejected, no email address")
		return &Result{Outcome: OutcomeRejected, Appended: appended}, nil
	}

	// History for context is the transcript before this message;
	// the user message is appended optimistically.
	history := p.transcript.Messages()
	userMsg := Message{Role: RoleUser, Content: text}
	p.transcript.Append(userMsg)

	sessionID, err := p.sessions.GetOrCreate(ctx)
	if err != nil {
		// A broken session store should not block the conversation.
		p.logger.Warn("session id unavailable, using ephemeral id", "error", err)
		sessionID = NewSessionID()
	}

	payload := BuildPayload(text, history, sessionID, time.Now())
	reply, outcome, dispatchErr := p.dispatch(ctx, payload)

	assistant := Message{Role: RoleAssistant, Content: reply}
	p.transcript.Append(assistant)
	metrics.ChatSubmissions.WithLabelValues(string(outcome)).Inc()

	res := &Result{
		Outcome:  outcome,
		Appended: []Message{userMsg, assistant},
		Err:      dispatchErr,
	}
	if dispatchErr != nil {
		p.logger.Error("webhook dispatch failed", "outcome", outcome, "error", dispatchErr)
	} else {
		p.logger.Info("submission completed", "session_id", sessionID, "reply_len", len(reply))
	}
	return res, nil
}

// dispatch posts the payload and normalizes the response into the
// assistant reply text.
func (p *Pipeline) dispatch(ctx context.Context, payload Payload) (reply string, outcome Outcome, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return errorMessagePrefix + err.Error(), OutcomeFailed, fmt.Errorf("marshaling payload: %w", err)
	}

	p.mu.RLock()
	url, timeout := p.webhookURL, p.timeout
	p.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errorMessagePrefix + err.Error(), OutcomeFailed, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	metrics.WebhookLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timeoutMessage, OutcomeTimedOut, fmt.Errorf("webhook dispatch: %w", err)
		}
		return errorMessagePrefix + err.Error(), OutcomeFailed, fmt.Errorf("webhook dispatch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errorMessagePrefix + err.Error(), OutcomeFailed, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		derr := fmt.Errorf("webhook returned %d: %s", resp.StatusCode, trimmed(string(respBody)))
		return errorMessagePrefix + derr.Error(), OutcomeFailed, derr
	}

	extracted := ExtractReply(respBody, resp.Header.Get("Content-Type"))
	return extracted.Text, OutcomeCompleted, nil
}

// workSummary renders the assistant message for a locally classified
// work-activity submission.
func workSummary(wc WorkClassification) string {
	if wc.ByBehavior {
		return "Data processed successfully.\n\n" +
			"Analysis result: user behavior classified as \"work\" activities.\n\n" +
			"No email alert sent. The user's queries are primarily work-related, " +
			"which is normal and expected behavior. The data was not flagged for " +
			"storage or email notification."
	}
	return fmt.Sprintf("Data processed successfully.\n\n"+
		"Analysis result: the user's activities show %.1f%% work-related queries.\n\n"+
		"No email alert sent. The majority of the user's queries are related to "+
		"work activities, which is expected behavior. The data was not flagged for "+
		"storage or email notification.", wc.WorkPct*100)
}

func trimmed(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
