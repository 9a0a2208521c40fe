// Package chat implements the chat submission pipeline: input validation,
// local short-circuit classification, webhook dispatch, and response
// normalization. The downstream processing (classification model, email
// dispatch) is owned by an external automation webhook.
package chat

import "sync"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greeting seeds every transcript.
const Greeting = "Hi! I'm the netsentry assistant. Send me your monitoring queries and I'll process them for you."

// Message is one entry in a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript is the append-only message sequence for one chat view.
// It always starts with the seeded assistant greeting and lives in memory
// for the lifetime of the view; nothing is persisted.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// NewTranscript returns a transcript seeded with the assistant greeting.
func NewTranscript() *Transcript {
	return &Transcript{
		messages: []Message{{Role: RoleAssistant, Content: Greeting}},
	}
}

// Append adds messages to the end of the transcript, in order.
func (t *Transcript) Append(msgs ...Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msgs...)
	t.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Reset drops all messages and reseeds the greeting.
func (t *Transcript) Reset() {
	t.mu.Lock()
	t.messages = []Message{{Role: RoleAssistant, Content: Greeting}}
	t.mu.Unlock()
}
