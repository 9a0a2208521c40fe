package records

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFieldNamesUnion(t *testing.T) {
	recs := []Record{
		{ID: "1", Fields: map[string]any{"name": "a", "dept": "eng"}},
		{ID: "2", Fields: map[string]any{"name": "b", "risk": 40}},
		{ID: "3", Fields: nil},
	}

	names := FieldNames(recs)
	want := []string{"dept", "name", "risk"}
	if len(names) != len(want) {
		t.Fatalf("FieldNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FieldNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestFieldNamesEmpty(t *testing.T) {
	if got := FieldNames(nil); len(got) != 0 {
		t.Errorf("FieldNames(nil) = %v, want empty", got)
	}
}

func TestFormatFieldValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "-"},
		{"string array", []any{"a", "b"}, "a, b"},
		{"string slice", []string{"x", "y"}, "x, y"},
		{"object", map[string]any{"x": float64(1)}, `{"x":1}`},
		{"string", "hello", "hello"},
		{"integer number", float64(42), "42"},
		{"fractional number", 3.5, "3.5"},
		{"bool", true, "true"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatFieldValue(tc.in); got != tc.want {
				t.Errorf("FormatFieldValue(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
