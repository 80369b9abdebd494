package normalize

import (
	"regexp"
	"strings"
	"time"
)

// InstantLayout is the rendering of every normalized timestamp.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// platform-native "2025-07-19 03:37:12.621"; the fraction is matched but dropped
var platformDateTime = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?`)

// fallbackLayouts are tried in order when the platform pattern does not match.
// Layouts without a zone are read as UTC.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02 15:04:05",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// DateTime normalizes a timestamp cell to a UTC instant string.
//
// The platform pattern is tried first and its fractional seconds are
// truncated: "2025-07-19 03:37:12.621" becomes "2025-07-19T03:37:12.000Z".
// Other recognizable formats are converted the same way. Anything else is
// returned unchanged; empty input returns "".
func DateTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if t, ok := Instant(s); ok {
		return t.Format(InstantLayout)
	}
	return s
}

// Instant parses s into a UTC time using the same rules as DateTime.
func Instant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := platformDateTime.FindStringSubmatch(s); m != nil {
		stamp := m[1] + "-" + m[2] + "-" + m[3] + "T" + m[4] + ":" + m[5] + ":" + m[6]
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", stamp, time.UTC); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
