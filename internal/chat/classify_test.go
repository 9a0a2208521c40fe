package chat

import "testing"

func TestHasEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain address", "contact alice@example.com about this", true},
		{"address with plus tag", "bob+alerts@mail.example.org", true},
		{"address mid-sentence", "report 45% entertainment for j.doe@corp.io today", true},
		{"no address", "analyze this behavior data", false},
		{"at sign without domain", "meet @ noon", false},
		{"missing tld", "alice@localhost", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEmail(tt.input); got != tt.want {
				t.Errorf("HasEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyWorkByPct(t *testing.T) {
	input := `please analyze [{"behavior":"mixed","features":{"work_pct":0.85}}] for admin@corp.io`
	wc, ok := ClassifyWork(input)
	if !ok {
		t.Fatal("expected work classification")
	}
	if wc.WorkPct != 0.85 {
		t.Errorf("WorkPct = %v, want 0.85", wc.WorkPct)
	}
	if wc.ByBehavior {
		t.Error("ByBehavior should be false when work_pct decided")
	}
}

func TestClassifyWorkByBehavior(t *testing.T) {
	input := `data: [{"behavior":"work","features":{}}]`
	wc, ok := ClassifyWork(input)
	if !ok {
		t.Fatal("expected work classification")
	}
	if !wc.ByBehavior {
		t.Error("ByBehavior should be true")
	}
}

func TestClassifyWorkNegative(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no brackets", "just a question for hr@corp.io"},
		{"not json", "see items [one, two] please"},
		{"empty array", "data: []"},
		{"pct at threshold", `[{"behavior":"mixed","features":{"work_pct":0.5}}]`},
		{"pct below threshold", `[{"behavior":"job_hunting","features":{"work_pct":0.2}}]`},
		{"missing features", `[{"behavior":"entertainment"}]`},
		{"object not array", `{"behavior":"work"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ClassifyWork(tt.input); ok {
				t.Errorf("ClassifyWork(%q) classified as work, want fallthrough", tt.input)
			}
		})
	}
}

func TestClassifyWorkFirstEntryDecides(t *testing.T) {
	// Only the first record is consulted; later records never flip the result.
	input := `[{"behavior":"job_hunting","features":{"work_pct":0.1}},{"behavior":"work","features":{"work_pct":0.9}}]`
	if _, ok := ClassifyWork(input); ok {
		t.Error("classification should follow the first entry only")
	}
}
