package grid

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Locator finds the grid region holding closed trades.
type Locator struct {
	selectors Selectors
	panelID   string
}

// NewLocator creates a locator. panelID is an optional stable element id
// checked before any scanning.
func NewLocator(selectors Selectors, panelID string) *Locator {
	return &Locator{selectors: selectors.withDefaults(), panelID: panelID}
}

// Match describes why a region was chosen.
type Match struct {
	Panel  *goquery.Selection
	Via    string // "panel_id", "active_tab", "headers" or "row_content"
	Signal string // strongest closed-trade header, for "headers"
	Rows   int
}

// Locate returns the closed-trade region, or nil when none is on the page.
// A nil result is not an error; the pass simply sees zero trades.
func (l *Locator) Locate(doc *goquery.Document) *goquery.Selection {
	if m := l.LocateMatch(doc); m != nil {
		return m.Panel
	}
	return nil
}

// LocateMatch is Locate with the reason for the choice.
func (l *Locator) LocateMatch(doc *goquery.Document) *Match {
	if doc == nil {
		return nil
	}

	if l.panelID != "" {
		if panel := findByID(doc.Selection, l.panelID); panel != nil && Visible(panel) {
			return &Match{Panel: panel, Via: "panel_id", Rows: l.rows(panel).Length()}
		}
	}

	if panel := l.activeTradesPanel(doc); panel != nil {
		return &Match{Panel: panel, Via: "active_tab", Rows: l.rows(panel).Length()}
	}

	var found *Match
	doc.Find(l.selectors.Panel).EachWithBreak(func(_ int, panel *goquery.Selection) bool {
		if !Visible(panel) {
			return true
		}
		headers := l.Headers(panel)
		if len(MatchHeaders(headers, BasicTradeHeaders)) == 0 {
			return true
		}
		closed := MatchHeaders(headers, ClosedTradeHeaders)
		if len(closed) == 0 || len(MatchHeaders(headers, OpenOrderHeaders)) > 0 {
			return true
		}
		rows := l.rows(panel).Length()
		if rows == 0 {
			return true
		}
		found = &Match{Panel: panel, Via: "headers", Signal: strongest(closed).Text, Rows: rows}
		return false
	})
	if found != nil {
		return found
	}

	// headers were not conclusive; accept a panel whose first row carries exit or PnL data
	doc.Find(l.selectors.Panel).EachWithBreak(func(_ int, panel *goquery.Selection) bool {
		if !Visible(panel) {
			return true
		}
		rows := l.rows(panel)
		if rows.Length() == 0 {
			return true
		}
		if hasClosedTradeData(rows.First()) {
			found = &Match{Panel: panel, Via: "row_content", Rows: rows.Length()}
			return false
		}
		return true
	})
	return found
}

// Headers returns the trimmed column header titles of a panel.
func (l *Locator) Headers(panel *goquery.Selection) []string {
	var headers []string
	panel.Find(l.selectors.HeaderTitle).Each(func(_ int, h *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(h.Text()))
	})
	return headers
}

// Rows returns the data rows of a located panel in document order.
func (l *Locator) Rows(panel *goquery.Selection) *goquery.Selection {
	return l.rows(panel)
}

func (l *Locator) rows(panel *goquery.Selection) *goquery.Selection {
	return panel.Find(l.selectors.Row)
}

// activeTradesPanel follows a selected "Trades" tab to the panel it controls.
func (l *Locator) activeTradesPanel(doc *goquery.Document) *goquery.Selection {
	var panel *goquery.Selection
	doc.Find(l.selectors.Tab).EachWithBreak(func(_ int, tab *goquery.Selection) bool {
		if !strings.Contains(strings.TrimSpace(tab.Text()), "Trade") {
			return true
		}
		if v, _ := tab.Attr("aria-selected"); v != "true" {
			return true
		}
		id, ok := tab.Attr("aria-controls")
		if !ok || id == "" {
			return true
		}
		if p := findByID(doc.Selection, id); p != nil && Visible(p) {
			panel = p
		}
		return false
	})
	return panel
}

func hasClosedTradeData(row *goquery.Selection) bool {
	closed := false
	row.Find("[data-field]").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		name := strings.ToLower(cell.AttrOr("data-field", ""))
		if !strings.Contains(name, "exit") && !strings.Contains(name, "pnl") && !strings.Contains(name, "p&l") {
			return true
		}
		text := strings.TrimSpace(cell.Text())
		if text != "" && text != "0" && text != "-" {
			closed = true
			return false
		}
		return true
	})
	return closed
}

// findByID matches the id attribute literally; platform ids like ":r3:-tabpanel"
// are not valid CSS identifiers.
func findByID(root *goquery.Selection, id string) *goquery.Selection {
	sel := root.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("id", "") == id
	}).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// Visible reports whether neither the element nor any ancestor is hidden by
// the hidden attribute, aria-hidden, or an inline display/visibility/opacity rule.
func Visible(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	for node := sel.First(); node.Length() > 0; node = node.Parent() {
		if goquery.NodeName(node) == "#document" {
			break
		}
		if _, hidden := node.Attr("hidden"); hidden {
			return false
		}
		if node.AttrOr("aria-hidden", "") == "true" {
			return false
		}
		if hiddenByStyle(node.AttrOr("style", "")) {
			return false
		}
	}
	return true
}

func hiddenByStyle(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		switch key {
		case "display":
			if value == "none" {
				return true
			}
		case "visibility":
			if value == "hidden" || value == "collapse" {
				return true
			}
		case "opacity":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f == 0 {
				return true
			}
		}
	}
	return false
}
