package chat

import "time"

// Payload is the webhook request body. The user text is duplicated across
// several aliased keys because downstream automation flows differ in which
// field they read; the endpoint's contract is externally owned.
type Payload struct {
	Action    string `json:"action"`
	ChatInput string `json:"chatInput"`
	Message   string `json:"message"`
	Input     string `json:"input"`
	Query     string `json:"query"`
	Text      string `json:"text"`

	SessionID      string `json:"sessionId"`
	ChatSessionKey string `json:"chatSessionKey"`

	// ConversationHistory carries the full prior transcript for context.
	ConversationHistory []Message `json:"conversationHistory"`

	Timestamp    string `json:"timestamp"`
	MessageCount int    `json:"messageCount"`
	UserID       string `json:"userId"`

	Context PayloadContext `json:"context"`
}

// PayloadContext describes where the submission originated.
type PayloadContext struct {
	Platform           string `json:"platform"`
	Source             string `json:"source"`
	ConversationLength int    `json:"conversationLength"`
}

// BuildPayload assembles the webhook request for one user message.
// History is the transcript as it stood before this message was appended.
func BuildPayload(userMessage string, history []Message, sessionID string, now time.Time) Payload {
	return Payload{
		Action:    "sendMessage",
		ChatInput: userMessage,
		Message:   userMessage,
		Input:     userMessage,
		Query:     userMessage,
		Text:      userMessage,

		SessionID:      sessionID,
		ChatSessionKey: sessionID,

		ConversationHistory: history,

		Timestamp:    now.UTC().Format(time.RFC3339),
		MessageCount: len(history),
		UserID:       "user-" + sessionID,

		Context: PayloadContext{
			Platform:           "web",
			Source:             "dashboard",
			ConversationLength: len(history),
		},
	}
}
