package types

// PropertyKind is the remote column type an equality condition applies to.
type PropertyKind string

const (
	KindTitle    PropertyKind = "title"
	KindRichText PropertyKind = "rich_text"
	KindSelect   PropertyKind = "select"
	KindNumber   PropertyKind = "number"
)

// Condition is one equality test on a remote property. Text is used for
// title, rich_text and select columns, Number for number columns.
type Condition struct {
	Property string
	Kind     PropertyKind
	Text     string
	Number   float64
}

// Filter is the AND of its conditions. A single condition is sent bare.
type Filter struct {
	And []Condition
}

// Equals builds a filter from one condition.
func Equals(c Condition) Filter {
	return Filter{And: []Condition{c}}
}

// AllOf builds the AND of conditions.
func AllOf(conds ...Condition) Filter {
	return Filter{And: conds}
}

// Record is one remote row returned by a query.
type Record struct {
	ID         string
	Title      string
	Properties map[string]any
}

// Remote column names written for every trade and used by duplicate queries.
const (
	PropTradeID     = "Trade ID"
	PropSymbol      = "Symbol"
	PropDirection   = "Direction"
	PropSize        = "Size"
	PropEntryPrice  = "Entry Price"
	PropExitPrice   = "Exit Price"
	PropPnL         = "PnL"
	PropFees        = "Fees"
	PropCommissions = "Commissions"
	PropEntryTime   = "Entry Time"
	PropExitTime    = "Exit Time"
	PropExtractedAt = "Extracted At"
	PropDuration    = "Duration"
	PropResult      = "Result"
	PropAccount     = "Account"
)
