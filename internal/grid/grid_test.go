package grid

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/types"
)

const ordersPanel = `
<div role="tabpanel" id="orders-panel">
  <div class="MuiDataGrid-columnHeaderTitle">Symbol</div>
  <div class="MuiDataGrid-columnHeaderTitle">Order Type</div>
  <div class="MuiDataGrid-columnHeaderTitle">Status</div>
  <div class="MuiDataGrid-columnHeaderTitle">Entry Price</div>
  <div class="MuiDataGrid-virtualScrollerRenderZone">
    <div class="MuiDataGrid-row" data-id="o1">
      <div class="MuiDataGrid-cell" data-field="symbolName">/MNQ</div>
      <div class="MuiDataGrid-cell" data-field="entryPrice">21,400.00</div>
    </div>
  </div>
</div>`

const tradesPanel = `
<div role="tabpanel" id=":r3:-tabpanel">
  <div class="MuiDataGrid-columnHeaderTitle">Symbol</div>
  <div class="MuiDataGrid-columnHeaderTitle">Size</div>
  <div class="MuiDataGrid-columnHeaderTitle">Entry Time</div>
  <div class="MuiDataGrid-columnHeaderTitle">Exit Time</div>
  <div class="MuiDataGrid-columnHeaderTitle">PnL</div>
  <div class="MuiDataGrid-virtualScrollerRenderZone">
    <div class="MuiDataGrid-row" data-id="1">
      <div class="MuiDataGrid-cell" data-field="id">98765</div>
      <div class="MuiDataGrid-cell" data-field="symbolName">/MNQ</div>
      <div class="MuiDataGrid-cell" data-field="positionSize">2</div>
      <div class="MuiDataGrid-cell" data-field="entryTime">2025-07-19 03:37:12.621</div>
      <div class="MuiDataGrid-cell" data-field="exitedAt">2025-07-19 03:40:01.100</div>
      <div class="MuiDataGrid-cell" data-field="entryPrice">21,500.25</div>
      <div class="MuiDataGrid-cell" data-field="exitPrice">21,510.75</div>
      <div class="MuiDataGrid-cell" data-field="pnL">$42.00</div>
      <div class="MuiDataGrid-cell" data-field="commisions">$1.24</div>
      <div class="MuiDataGrid-cell" data-field="fees">$0.74</div>
      <div class="MuiDataGrid-cell" data-field="direction">Long</div>
      <div class="MuiDataGrid-cell" data-field="tradeDurationDisplay">2m 49s</div>
    </div>
    <div class="MuiDataGrid-row" data-id="2">
      <div class="MuiDataGrid-cell" data-field="symbol">/ES</div>
      <div class="MuiDataGrid-cell" data-field="qty">1</div>
      <div class="MuiDataGrid-cell" data-field="entryTimestamp">2025-07-19 04:00:00</div>
      <div class="MuiDataGrid-cell" data-field="entryPrice">6,300.50</div>
      <div class="MuiDataGrid-cell" data-field="exitPrice">6,295.00</div>
      <div class="MuiDataGrid-cell" data-field="profitLoss">-$275.00</div>
      <div class="MuiDataGrid-cell" data-field="side">Short</div>
    </div>
    <div class="MuiDataGrid-row" data-id="3">
      <div class="MuiDataGrid-cell" data-field="symbolName">/NQ</div>
      <div class="MuiDataGrid-cell" data-field="entryPrice">21,000</div>
      <div class="MuiDataGrid-cell" data-field="exitPrice">-</div>
      <div class="MuiDataGrid-cell" data-field="exitedAt">-</div>
    </div>
  </div>
</div>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + html + "</body></html>"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestLocatorSkipsOrdersGrid(t *testing.T) {
	doc := mustDoc(t, ordersPanel+tradesPanel)
	loc := NewLocator(Selectors{}, "")

	m := loc.LocateMatch(doc)
	if m == nil {
		t.Fatal("Expected closed-trade panel to be found")
	}
	if id := m.Panel.AttrOr("id", ""); id != ":r3:-tabpanel" {
		t.Errorf("Expected trades panel, got %q", id)
	}
	if m.Via != "headers" {
		t.Errorf("Expected match via headers, got %s", m.Via)
	}
	if m.Signal != "Exit Time" {
		t.Errorf("Expected strongest signal Exit Time, got %s", m.Signal)
	}
	if m.Rows != 3 {
		t.Errorf("Expected 3 rows, got %d", m.Rows)
	}
}

func TestLocatorSkipsHiddenPanels(t *testing.T) {
	hidden := strings.Replace(tradesPanel, `role="tabpanel"`, `role="tabpanel" style="display: none"`, 1)
	doc := mustDoc(t, ordersPanel+hidden)

	if p := NewLocator(Selectors{}, "").Locate(doc); p != nil {
		t.Errorf("Expected no panel when trades grid is hidden, got %q", p.AttrOr("id", ""))
	}

	wrapped := mustDoc(t, `<div style="opacity:0">`+tradesPanel+`</div>`)
	if p := NewLocator(Selectors{}, "").Locate(wrapped); p != nil {
		t.Error("Expected panel inside a transparent container to be invisible")
	}
}

func TestLocatorRequiresRows(t *testing.T) {
	empty := `
<div role="tabpanel">
  <div class="MuiDataGrid-columnHeaderTitle">Symbol</div>
  <div class="MuiDataGrid-columnHeaderTitle">Exit Price</div>
  <div class="MuiDataGrid-virtualScrollerRenderZone"></div>
</div>`
	if p := NewLocator(Selectors{}, "").Locate(mustDoc(t, empty)); p != nil {
		t.Error("Expected a grid without data rows not to qualify")
	}
}

func TestLocatorPanelIDFastPath(t *testing.T) {
	doc := mustDoc(t, ordersPanel+tradesPanel)
	m := NewLocator(Selectors{}, "orders-panel").LocateMatch(doc)
	if m == nil || m.Via != "panel_id" {
		t.Fatalf("Expected configured panel id to win, got %+v", m)
	}
}

func TestLocatorActiveTab(t *testing.T) {
	tabs := `<button role="tab" aria-selected="false" aria-controls="orders-panel">Orders</button>
<button role="tab" aria-selected="true" aria-controls=":r3:-tabpanel">Trades</button>`
	m := NewLocator(Selectors{}, "").LocateMatch(mustDoc(t, tabs+ordersPanel+tradesPanel))
	if m == nil || m.Via != "active_tab" {
		t.Fatalf("Expected active tab to be followed, got %+v", m)
	}
}

func TestLocatorRowContentFallback(t *testing.T) {
	unlabeled := `
<div role="tabpanel" id="p">
  <div class="MuiDataGrid-virtualScrollerRenderZone">
    <div class="MuiDataGrid-row" data-id="1">
      <div data-field="symbolName">/MNQ</div>
      <div data-field="exitPrice">21,510.75</div>
    </div>
  </div>
</div>`
	m := NewLocator(Selectors{}, "").LocateMatch(mustDoc(t, unlabeled))
	if m == nil || m.Via != "row_content" {
		t.Fatalf("Expected row content fallback, got %+v", m)
	}
}

func TestLocatorNilDocument(t *testing.T) {
	if NewLocator(Selectors{}, "").Locate(nil) != nil {
		t.Error("Expected nil for nil document")
	}
}

func TestMatchHeaders(t *testing.T) {
	headers := []string{"Symbol", "Exit Price", "Trade Duration"}
	got := MatchHeaders(headers, ClosedTradeHeaders)
	if len(got) == 0 || got[0].Text != "Exit Price" {
		t.Errorf("Expected Exit Price first, got %+v", got)
	}
	if len(MatchHeaders(headers, OpenOrderHeaders)) != 0 {
		t.Error("Expected no open-order signals")
	}
}

func TestCellTextAndAliases(t *testing.T) {
	doc := mustDoc(t, tradesPanel)
	rows := NewLocator(Selectors{}, "").Rows(doc.Selection)

	second := rows.Eq(1)
	if got := CellText(second, "symbol"); got != "/ES" {
		t.Errorf("Expected /ES, got %q", got)
	}
	if got := CellText(second, "missing"); got != "" {
		t.Errorf("Expected empty text for missing field, got %q", got)
	}
	if got := Read(second, FieldPositionSize); got != "1" {
		t.Errorf("Expected qty alias to be used, got %q", got)
	}
	if got := Read(second, FieldPnL); got != "-$275.00" {
		t.Errorf("Expected profitLoss alias, got %q", got)
	}
	if got := CellText(nil, "id"); got != "" {
		t.Errorf("Expected empty text for nil row, got %q", got)
	}
}

func TestBuilderBuildsClosedTrades(t *testing.T) {
	now := time.Date(2025, 7, 19, 5, 0, 0, 0, time.UTC)
	b := NewBuilder(NewLocator(Selectors{}, ""), func() time.Time { return now })
	account := types.AccountContext{AccountType: "Combine", AccountName: "Combine", AccountID: "50KTC-V2-1"}

	trades := b.Build(context.Background(), mustDoc(t, ordersPanel+tradesPanel), account)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 closed trades (open row skipped), got %d", len(trades))
	}

	first := trades[0]
	if first.CanonicalID != "98765" || first.ExternalID != "98765" {
		t.Errorf("Expected platform id as canonical id, got %q", first.CanonicalID)
	}
	if first.Symbol != "MNQ" {
		t.Errorf("Expected MNQ, got %s", first.Symbol)
	}
	if first.EntryPrice == nil || *first.EntryPrice != 21500.25 {
		t.Errorf("Expected entry price 21500.25, got %v", first.EntryPrice)
	}
	if first.EntryTime != "2025-07-19T03:37:12.000Z" {
		t.Errorf("Expected truncated entry time, got %s", first.EntryTime)
	}
	if first.ExitTime != "2025-07-19T03:40:01.000Z" {
		t.Errorf("Expected truncated exit time, got %s", first.ExitTime)
	}
	if first.Commissions == nil || *first.Commissions != 1.24 {
		t.Errorf("Expected commissions from misspelled field, got %v", first.Commissions)
	}
	if first.Direction != types.Long {
		t.Errorf("Expected Long, got %s", first.Direction)
	}
	if first.AccountID != "50KTC-V2-1" {
		t.Errorf("Expected account id to be stamped, got %s", first.AccountID)
	}
	if !first.ExtractedAt.Equal(now) {
		t.Errorf("Expected capture time %v, got %v", now, first.ExtractedAt)
	}

	second := trades[1]
	if second.ExternalID != "" {
		t.Errorf("Expected no platform id, got %q", second.ExternalID)
	}
	want := DeriveID("ES", "6,300.50", "1", "Short", "2025-07-19 04:00:00", now)
	if second.CanonicalID != want || second.HashID != want {
		t.Errorf("Expected derived id %s, got %s", want, second.CanonicalID)
	}
	if first.HashID == "" || first.HashID == first.CanonicalID {
		t.Errorf("Expected a derived hash id alongside the platform id, got %q", first.HashID)
	}
	if second.ExitTime != "" {
		t.Errorf("Expected empty exit time, got %q", second.ExitTime)
	}
	if second.Fees != nil {
		t.Errorf("Expected unknown fees, got %v", *second.Fees)
	}
}

func TestBuilderNoGrid(t *testing.T) {
	b := NewBuilder(NewLocator(Selectors{}, ""), nil)
	if trades := b.Build(context.Background(), mustDoc(t, ordersPanel), types.AccountContext{}); len(trades) != 0 {
		t.Errorf("Expected zero trades without a closed-trade grid, got %d", len(trades))
	}
}

func TestBuildRowValidityGate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		raw  RawRow
		ok   bool
	}{
		{"missing symbol", RawRow{FieldEntryPrice: "1", FieldExitPrice: "2"}, false},
		{"missing entry price", RawRow{FieldSymbol: "ES", FieldExitPrice: "2"}, false},
		{"unparseable entry price", RawRow{FieldSymbol: "ES", FieldEntryPrice: "-", FieldExitPrice: "2"}, false},
		{"no exit at all", RawRow{FieldSymbol: "ES", FieldEntryPrice: "1"}, false},
		{"exit placeholders", RawRow{FieldSymbol: "ES", FieldEntryPrice: "1", FieldExitPrice: "-", FieldExitTime: "0"}, false},
		{"exit price only", RawRow{FieldSymbol: "ES", FieldEntryPrice: "1", FieldExitPrice: "2"}, true},
		{"exit time only", RawRow{FieldSymbol: "ES", FieldEntryPrice: "1", FieldExitTime: "2025-07-19 03:40:01"}, true},
	}

	for _, tt := range tests {
		_, ok := BuildRow(tt.raw, types.AccountContext{}, now)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
		}
	}
}

func TestHash(t *testing.T) {
	tests := map[string]string{
		"":   "0",
		"a":  "2p",
		"ab": "2e9",
		"MNQ-21500.25-2-Long-1752896232000":  "z4vqgg",
		"MNQ-21,500.25-2-Long-1752896232000": "cfuybg",
	}
	for in, want := range tests {
		if got := Hash(in); got != want {
			t.Errorf("Hash(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestDeriveIDDeterministic(t *testing.T) {
	capture1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	capture2 := capture1.Add(time.Hour)

	a := DeriveID("MNQ", "21500.25", "2", "Long", "2025-07-19 03:37:12.621", capture1)
	b := DeriveID("MNQ", "21500.25", "2", "Long", "2025-07-19 03:37:12.621", capture2)
	if a != b {
		t.Errorf("Expected equal ids for equal entry tuples, got %s and %s", a, b)
	}
	if a != "z4vqgg" {
		t.Errorf("Expected z4vqgg, got %s", a)
	}

	c := DeriveID("MNQ", "21500.25", "2", "Short", "2025-07-19 03:37:12.621", capture1)
	if a == c {
		t.Error("Expected direction to change the id")
	}

	// with no entry time the capture timestamp is part of the tuple
	d1 := DeriveID("MNQ", "21500.25", "2", "Long", "", capture1)
	d2 := DeriveID("MNQ", "21500.25", "2", "Long", "", capture1)
	if d1 != d2 {
		t.Error("Expected equal ids for the same capture time")
	}
}

func TestParseAccount(t *testing.T) {
	tests := []struct {
		text     string
		typ      string
		name, id string
	}{
		{"Combine | 50KTC-V2-123456-789", "Combine", "Combine", "50KTC-V2-123456-789"},
		{"PRACTICE S1JUL2512345", "Practice", "PRACTICE", "S1JUL2512345"},
		{"Express Funded - EXPRESS-V2-42", "Express Funded", "Express Funded", "EXPRESS-V2-42"},
		{"My Account", "Unknown", "My Account", ""},
	}
	for _, tt := range tests {
		got := ParseAccount(tt.text)
		if got.AccountType != tt.typ || got.AccountName != tt.name || got.AccountID != tt.id {
			t.Errorf("ParseAccount(%q): expected {%s %s %s}, got {%s %s %s}",
				tt.text, tt.typ, tt.name, tt.id, got.AccountType, got.AccountName, got.AccountID)
		}
	}

	if ParseAccount("").Key() != "default" {
		t.Error("Expected empty selector to map to the default key")
	}
}

func TestAccountSelectorText(t *testing.T) {
	doc := mustDoc(t, `<div data-testid="account-selector">  Combine
   | 50KTC-V2-1 </div>`)
	if got := AccountSelectorText(doc, Selectors{}); got != "Combine | 50KTC-V2-1" {
		t.Errorf("Expected collapsed selector text, got %q", got)
	}
}

func TestBuilderSkipsIncompleteRowsWithDebug(t *testing.T) {
	logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "text", DetailedLogging: true})
	defer logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "text"})

	b := NewBuilder(NewLocator(Selectors{}, ""), nil)
	trades := b.Build(context.Background(), mustDoc(t, ordersPanel+tradesPanel), types.AccountContext{})
	if len(trades) != 2 {
		t.Errorf("Expected the open row to be skipped with debug logging on, got %d trades", len(trades))
	}
}
