package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

// emailPattern matches a standard local@domain.tld address anywhere in the
// text. Every processable request must carry at least one.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// HasEmail reports whether the input contains an email address.
func HasEmail(input string) bool {
	return emailPattern.MatchString(input)
}

// behaviorRecord is the shape of one entry in a pasted behavior-data array.
type behaviorRecord struct {
	Behavior string `json:"behavior"`
	Features struct {
		WorkPct *float64 `json:"work_pct"`
	} `json:"features"`
}

// WorkClassification describes why a submission was classified as ordinary
// work activity and handled without contacting the webhook.
type WorkClassification struct {
	// WorkPct is set when the first entry carried features.work_pct > 0.5.
	WorkPct float64
	// ByBehavior is true when the first entry's behavior field was "work".
	ByBehavior bool
}

// ClassifyWork inspects the input for an embedded JSON array of behavior
// records and reports whether it describes majority-work activity. The scan
// spans from the first '[' to the last ']' in the text. Parse failures are
// not errors: the input simply is not behavior data and falls through to
// normal processing.
func ClassifyWork(input string) (WorkClassification, bool) {
	start := strings.Index(input, "[")
	end := strings.LastIndex(input, "]")
	if start < 0 || end <= start {
		return WorkClassification{}, false
	}

	var entries []behaviorRecord
	if err := json.Unmarshal([]byte(input[start:end+1]), &entries); err != nil {
		return WorkClassification{}, false
	}
	if len(entries) == 0 {
		return WorkClassification{}, false
	}

	first := entries[0]
	if first.Features.WorkPct != nil && *first.Features.WorkPct > 0.5 {
		return WorkClassification{WorkPct: *first.Features.WorkPct}, true
	}
	if first.Behavior == "work" {
		return WorkClassification{ByBehavior: true}, true
	}
	return WorkClassification{}, false
}
