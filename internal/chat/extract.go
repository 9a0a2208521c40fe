package chat

import (
	"encoding/json"
	"strings"
)

// ReplyKind tags how the assistant reply was derived from a webhook
// response. The external endpoint returns one of several loosely-typed
// shapes; extraction is an explicit matcher over them.
type ReplyKind int

const (
	// ReplyGmail: a Gmail-API-shaped success object (id + threadId +
	// labelIds). Mapped to a fixed confirmation string.
	ReplyGmail ReplyKind = iota
	// ReplyFielded: one of the known reply fields was populated.
	ReplyFielded
	// ReplyRaw: the body itself was a bare string (or non-JSON text).
	ReplyRaw
	// ReplyUnknown: valid JSON matching no known shape; rendered as a
	// pretty-printed dump behind an explanatory note.
	ReplyUnknown
)

// Reply is the normalized assistant reply.
type Reply struct {
	Kind ReplyKind
	Text string
}

// Fixed reply strings.
const (
	gmailConfirmation = "Message processed successfully. Your query has been received and is being handled."
	emptyReplyNotice  = "I received your message, but the response was empty. Please try again."
	unknownShapeNote  = "I received your message. Here's the raw response:\n\n"
)

// replyFields is the priority order for extracting the assistant reply
// from a fielded JSON response.
var replyFields = []string{"output", "response", "message", "text", "result", "reply", "answer"}

// ExtractReply normalizes a webhook response body into an assistant reply.
// Non-JSON content types are treated as plain text wrapped in an output
// field. An extracted reply that is empty or whitespace becomes a fixed
// empty-response notice.
func ExtractReply(body []byte, contentType string) Reply {
	if !strings.Contains(contentType, "application/json") {
		return nonEmpty(Reply{Kind: ReplyRaw, Text: string(body)})
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		// Mislabeled content type; fall back to the raw text.
		return nonEmpty(Reply{Kind: ReplyRaw, Text: string(body)})
	}

	switch v := data.(type) {
	case string:
		return nonEmpty(Reply{Kind: ReplyRaw, Text: v})
	case map[string]any:
		return nonEmpty(extractFromObject(v))
	default:
		return nonEmpty(Reply{Kind: ReplyUnknown, Text: unknownShapeNote + prettyJSON(data)})
	}
}

func extractFromObject(obj map[string]any) Reply {
	// Gmail API success shape takes precedence over everything. The ids
	// must be populated strings; a present-but-empty id is not a send
	// confirmation.
	if hasText(obj, "id") && hasText(obj, "threadId") && hasKey(obj, "labelIds") {
		return Reply{Kind: ReplyGmail, Text: gmailConfirmation}
	}

	for _, field := range replyFields {
		if s, ok := stringValue(obj[field]); ok {
			return Reply{Kind: ReplyFielded, Text: s}
		}
	}

	// Nested data.output used by some flows.
	if nested, ok := obj["data"].(map[string]any); ok {
		if s, ok := stringValue(nested["output"]); ok {
			return Reply{Kind: ReplyFielded, Text: s}
		}
	}

	return Reply{Kind: ReplyUnknown, Text: unknownShapeNote + prettyJSON(obj)}
}

// stringValue returns a non-empty string rendition of a reply field.
// Strings are used directly; other populated scalars are ignored so that
// e.g. a numeric "result" does not shadow a later textual field.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func hasKey(obj map[string]any, key string) bool {
	v, ok := obj[key]
	return ok && v != nil
}

func hasText(obj map[string]any, key string) bool {
	_, ok := stringValue(obj[key])
	return ok
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "(unprintable response)"
	}
	return string(b)
}

func nonEmpty(r Reply) Reply {
	if strings.TrimSpace(r.Text) == "" {
		r.Text = emptyReplyNotice
	}
	return r
}
