package grid

import "strings"

// Selectors are the CSS selectors used to walk the platform's data grid.
// They change with platform releases, so they are configuration rather than code.
type Selectors struct {
	Tab             string `yaml:"tab"`
	Panel           string `yaml:"panel"`
	HeaderTitle     string `yaml:"header_title"`
	Row             string `yaml:"row"`
	AccountSelector string `yaml:"account_selector"`
}

// DefaultSelectors matches the MUI DataGrid markup used by the platform.
func DefaultSelectors() Selectors {
	return Selectors{
		Tab:             `[role="tab"]`,
		Panel:           `[role="tabpanel"]`,
		HeaderTitle:     `.MuiDataGrid-columnHeaderTitle`,
		Row:             `.MuiDataGrid-virtualScrollerRenderZone .MuiDataGrid-row[data-id]`,
		AccountSelector: `[data-testid="account-selector"], .account-selector, [aria-label="Select account"]`,
	}
}

// withDefaults fills empty selectors so a partial config still works.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if s.Tab == "" {
		s.Tab = d.Tab
	}
	if s.Panel == "" {
		s.Panel = d.Panel
	}
	if s.HeaderTitle == "" {
		s.HeaderTitle = d.HeaderTitle
	}
	if s.Row == "" {
		s.Row = d.Row
	}
	if s.AccountSelector == "" {
		s.AccountSelector = d.AccountSelector
	}
	return s
}

// HeaderSignal is one column-header substring that says something about a grid.
// Lower Priority values are stronger evidence.
type HeaderSignal struct {
	Text     string
	Priority int
}

// ClosedTradeHeaders mark a grid of completed trades.
var ClosedTradeHeaders = []HeaderSignal{
	{"Exit Time", 1},
	{"Exit Price", 1},
	{"Closed", 2},
	{"PnL", 2},
	{"P&L", 2},
	{"Profit/Loss", 2},
	{"Trade Duration", 3},
	{"Duration", 3},
	{"Exit", 4},
	{"Entry Price", 5},
	{"Entry Time", 5},
}

// OpenOrderHeaders mark a working-orders grid; any match disqualifies a panel.
var OpenOrderHeaders = []HeaderSignal{
	{"Order Type", 1},
	{"Time in Force", 1},
	{"TIF", 1},
	{"Status", 2},
	{"Pending", 2},
	{"Filled", 3},
}

// BasicTradeHeaders must be present for a panel to be a trade grid at all.
var BasicTradeHeaders = []HeaderSignal{
	{"Symbol", 1},
	{"Entry", 2},
	{"Size", 2},
	{"Qty", 2},
}

// MatchHeaders returns the signals found (case-insensitive substring) in headers,
// in table order.
func MatchHeaders(headers []string, table []HeaderSignal) []HeaderSignal {
	var matched []HeaderSignal
	for _, sig := range table {
		needle := strings.ToLower(sig.Text)
		for _, h := range headers {
			if h != "" && strings.Contains(strings.ToLower(h), needle) {
				matched = append(matched, sig)
				break
			}
		}
	}
	return matched
}

// strongest returns the highest-priority signal, or the zero value.
func strongest(signals []HeaderSignal) HeaderSignal {
	var best HeaderSignal
	for _, s := range signals {
		if best.Text == "" || s.Priority < best.Priority {
			best = s
		}
	}
	return best
}

// Field is a logical trade attribute read from a row.
type Field string

const (
	FieldID           Field = "id"
	FieldSymbol       Field = "symbol"
	FieldPositionSize Field = "positionSize"
	FieldEntryTime    Field = "entryTime"
	FieldExitTime     Field = "exitTime"
	FieldDuration     Field = "duration"
	FieldEntryPrice   Field = "entryPrice"
	FieldExitPrice    Field = "exitPrice"
	FieldPnL          Field = "pnl"
	FieldCommissions  Field = "commissions"
	FieldFees         Field = "fees"
	FieldDirection    Field = "direction"
)

// FieldAliases lists, per attribute, the data-field names tried in order.
// The first non-empty cell wins. "commisions" is the platform's own spelling.
var FieldAliases = map[Field][]string{
	FieldID:           {"id", "tradeId"},
	FieldSymbol:       {"symbolName", "symbol"},
	FieldPositionSize: {"positionSize", "size", "qty"},
	FieldEntryTime:    {"entryTime", "entryTimestamp"},
	FieldExitTime:     {"exitedAt", "exitTime", "exitTimestamp"},
	FieldDuration:     {"tradeDurationDisplay", "duration"},
	FieldEntryPrice:   {"entryPrice"},
	FieldExitPrice:    {"exitPrice"},
	FieldPnL:          {"pnL", "pnl", "profitLoss"},
	FieldCommissions:  {"commisions", "commissions"},
	FieldFees:         {"fees"},
	FieldDirection:    {"direction", "side"},
}
