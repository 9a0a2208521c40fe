package records

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldNames returns the union of field names appearing across all records.
// The source does not guarantee any column order, so names are sorted for a
// stable table header.
func FieldNames(recs []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		for name := range r.Fields {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatFieldValue renders an arbitrary field value for display:
// nil becomes a placeholder, arrays are comma-joined, objects are JSON,
// everything else is string-coerced.
func FormatFieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; render integers without the decimal.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
