package types

import "time"

// Direction is the side of a closed trade as shown in the grid.
type Direction string

const (
	Long    Direction = "Long"
	Short   Direction = "Short"
	Unknown Direction = "Unknown"
)

// Trade is one closed trade read from the grid. Numeric fields are nil when
// the cell was empty or unparseable. HashID is always the locally derived id;
// CanonicalID equals ExternalID when the platform supplied one, else HashID.
type Trade struct {
	CanonicalID     string    `json:"canonical_id"`
	ExternalID      string    `json:"external_id,omitempty"`
	HashID          string    `json:"hash_id"`
	Symbol          string    `json:"symbol"`
	Direction       Direction `json:"direction"`
	DirectionText   string    `json:"direction_text,omitempty"`
	PositionSize    *float64  `json:"position_size"`
	EntryPrice      *float64  `json:"entry_price"`
	ExitPrice       *float64  `json:"exit_price"`
	EntryTime       string    `json:"entry_time,omitempty"`
	ExitTime        string    `json:"exit_time,omitempty"`
	PnL             *float64  `json:"pnl"`
	Fees            *float64  `json:"fees"`
	Commissions     *float64  `json:"commissions"`
	DurationDisplay string    `json:"duration_display,omitempty"`
	ExtractedAt     time.Time `json:"extracted_at"`
	AccountType     string    `json:"account_type,omitempty"`
	AccountName     string    `json:"account_name,omitempty"`
	AccountID       string    `json:"account_id,omitempty"`
}

// HasExternalID reports whether the platform supplied its own id for the row.
func (t Trade) HasExternalID() bool {
	return t.ExternalID != ""
}

const (
	ResultWin       = "Win"
	ResultLoss      = "Loss"
	ResultBreakeven = "Breakeven"
)

// Result classifies the trade by PnL sign; "" when PnL is unknown.
func (t Trade) Result() string {
	switch {
	case t.PnL == nil:
		return ""
	case *t.PnL > 0:
		return ResultWin
	case *t.PnL < 0:
		return ResultLoss
	default:
		return ResultBreakeven
	}
}

// AccountContext is the account currently selected on the page.
type AccountContext struct {
	AccountType  string `json:"account_type"`
	AccountName  string `json:"account_name"`
	AccountID    string `json:"account_id"`
	SelectorText string `json:"selector_text"`
}

// Key identifies the account for namespacing processed ids and pass leases.
func (a AccountContext) Key() string {
	if a.AccountID != "" {
		return a.AccountID
	}
	if a.SelectorText != "" {
		return a.SelectorText
	}
	return "default"
}

// Counters are the persisted sync statistics.
type Counters struct {
	LifetimeTradeCount int    `json:"lifetime_trade_count"`
	TodayTradeCount    int    `json:"today_trade_count"`
	LastUpdateDate     string `json:"last_update_date"`
}

// Settings are the user-provided credentials and toggles.
type Settings struct {
	Token                     string `json:"token"`
	StoreID                   string `json:"store_id"`
	AutoSyncEnabled           bool   `json:"auto_sync_enabled"`
	RealTimeMonitoringEnabled bool   `json:"real_time_monitoring_enabled"`
}
