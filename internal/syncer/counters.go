package syncer

import (
	"fmt"
	"strings"
	"time"

	"notion-trade-sync/internal/types"
)

// DateLayout is the calendar-day key stored in Counters.LastUpdateDate.
const DateLayout = "2006-01-02"

// ApplyCounters adds synced submissions to c. If the stored date is not today
// the daily count restarts at synced instead of accumulating.
func ApplyCounters(c types.Counters, synced int, today string) types.Counters {
	c.LifetimeTradeCount += synced
	if c.LastUpdateDate != today {
		c.TodayTradeCount = synced
	} else {
		c.TodayTradeCount += synced
	}
	c.LastUpdateDate = today
	return c
}

// LocalDate renders t as a local calendar date.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Message is the human-readable pass summary.
func Message(r types.SyncResult) string {
	if r.SuccessCount == 0 && r.DuplicateCount == 0 && r.FailedCount == 0 {
		return "no new trades"
	}
	msg := fmt.Sprintf("%d synced, %d duplicates skipped", r.SuccessCount, r.DuplicateCount)
	if r.FailedCount > 0 {
		msg += fmt.Sprintf(", %d failed", r.FailedCount)
	}
	return msg
}

// MissingSettingsError names every setting a pass needs but does not have.
type MissingSettingsError struct {
	Missing []string
}

func (e *MissingSettingsError) Error() string {
	return "settings incomplete, missing: " + strings.Join(e.Missing, ", ")
}

// RequireSettings returns a *MissingSettingsError when credentials are absent.
func RequireSettings(s types.Settings) error {
	var missing []string
	if strings.TrimSpace(s.Token) == "" {
		missing = append(missing, "Notion token")
	}
	if strings.TrimSpace(s.StoreID) == "" {
		missing = append(missing, "Database ID")
	}
	if len(missing) > 0 {
		return &MissingSettingsError{Missing: missing}
	}
	return nil
}
