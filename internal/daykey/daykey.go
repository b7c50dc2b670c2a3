// Package daykey normalizes the timestamp shapes seen in the alert export
// into the canonical YYYY-MM-DD key used for per-day grouping.
package daykey

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var canonical = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Normalize converts a timestamp value into a canonical day key. The ok
// result is false when the value has no extractable ISO date; callers skip
// the row rather than fail. Locale-formatted dates are not supported — the
// export always emits ISO-8601 prefixes.
func Normalize(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return fromString(t)
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.Format("2006-01-02"), true
	case fmt.Stringer:
		return fromString(t.String())
	default:
		return fromString(fmt.Sprint(v))
	}
}

// Valid reports whether s already is a canonical day key.
func Valid(s string) bool { return canonical.MatchString(s) }

func fromString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	// "2025-05-10T08:00:00Z" and "2025-05-10 08:00:00" both reduce to the
	// date prefix; a bare "2025-05-10" passes through unchanged.
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	if !canonical.MatchString(s) {
		return "", false
	}
	return s, true
}
