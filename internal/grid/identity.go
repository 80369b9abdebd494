package grid

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"notion-trade-sync/internal/normalize"
)

// Hash is the 31-multiplier rolling string hash over UTF-16 code units,
// folded to a signed 32-bit integer and rendered as |hash| in base 36.
// It is stable across runs and platforms but not collision resistant.
func Hash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// DeriveID builds the canonical id for a row that has no platform id.
// Price, size and direction are the cell texts as displayed. The time element
// is the entry instant in epoch milliseconds; unparseable entry text is used
// verbatim, and an empty entry time falls back to capturedAt.
func DeriveID(symbol, entryPrice, positionSize, direction, entryTime string, capturedAt time.Time) string {
	elements := []string{
		symbol,
		entryPrice,
		positionSize,
		direction,
		timeElement(entryTime, capturedAt),
	}
	return Hash(strings.Join(elements, "-"))
}

func timeElement(entryTime string, capturedAt time.Time) string {
	if entryTime = strings.TrimSpace(entryTime); entryTime != "" {
		if t, ok := normalize.Instant(entryTime); ok {
			return strconv.FormatInt(t.UnixMilli(), 10)
		}
		return entryTime
	}
	return strconv.FormatInt(capturedAt.UnixMilli(), 10)
}
