// Package normalize turns raw grid cell text into typed values.
// Nothing in this package returns an error: unparseable input degrades to
// nil (numbers), passthrough text (timestamps) or Unknown (direction).
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"notion-trade-sync/internal/types"
)

var (
	numberNoise = strings.NewReplacer(
		",", "",
		"$", "",
		"€", "",
		"£", "",
		"¥", "",
		"%", "",
		"\u00a0", "",
		" ", "",
	)

	// leading numeric prefix, the same way a lenient float parser reads "12.5 USD"
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Number parses a cell such as "$1,234.50" or "-12.5%" into a float.
// Empty, "-" or otherwise unparseable text yields nil, never 0.
func Number(raw string) *float64 {
	cleaned := numberNoise.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}

	match := numberPrefix.FindString(cleaned)
	if match == "" {
		return nil
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Direction maps the side column to a Direction. The original text is kept
// by callers for display; this only classifies it.
func Direction(raw string) types.Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "long", "buy", "bought", "l", "b":
		return types.Long
	case "short", "sell", "sold", "s":
		return types.Short
	default:
		return types.Unknown
	}
}

// Symbol strips the slash prefix the platform puts on futures roots ("/MNQ").
func Symbol(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "/", ""))
}
