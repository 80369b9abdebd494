package notion

import (
	"strings"

	"notion-trade-sync/internal/normalize"
	"notion-trade-sync/internal/types"
)

type richText struct {
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

type property struct {
	Type     string     `json:"type"`
	Title    []richText `json:"title"`
	RichText []richText `json:"rich_text"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select"`
	Number *float64 `json:"number"`
	Date   *struct {
		Start string `json:"start"`
	} `json:"date"`
}

func plainText(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.PlainText != "":
			b.WriteString(p.PlainText)
		case p.Text != nil:
			b.WriteString(p.Text.Content)
		}
	}
	return b.String()
}

// value flattens a property to a plain Go value for logging and journals.
func (p property) value() any {
	switch p.Type {
	case "title":
		return plainText(p.Title)
	case "rich_text":
		return plainText(p.RichText)
	case "select":
		if p.Select != nil {
			return p.Select.Name
		}
	case "number":
		if p.Number != nil {
			return *p.Number
		}
	case "date":
		if p.Date != nil {
			return p.Date.Start
		}
	}
	return nil
}

func (p pageResponse) record() types.Record {
	r := types.Record{ID: p.ID, Properties: make(map[string]any, len(p.Properties))}
	for name, prop := range p.Properties {
		if v := prop.value(); v != nil {
			r.Properties[name] = v
		}
	}
	if t, ok := p.Properties[types.PropTradeID]; ok {
		r.Title = plainText(t.Title)
	}
	return r
}

func textValue(s string) []map[string]any {
	return []map[string]any{{"text": map[string]string{"content": s}}}
}

func selectValue(name string) map[string]any {
	return map[string]any{"select": map[string]string{"name": name}}
}

func dateValue(start string) map[string]any {
	return map[string]any{"date": map[string]string{"start": start}}
}

// TradeProperties renders a trade as page properties. Unknown numbers and
// unparseable times are left out rather than written as zero.
func TradeProperties(t types.Trade) map[string]any {
	props := map[string]any{}

	title := t.ExternalID
	if title == "" {
		title = t.CanonicalID
	}
	if title == "" {
		title = "Unknown"
	}
	props[types.PropTradeID] = map[string]any{"title": textValue(title)}

	if t.Symbol != "" {
		props[types.PropSymbol] = selectValue(t.Symbol)
	}
	if t.Direction != "" && (t.Direction != types.Unknown || t.DirectionText != "") {
		props[types.PropDirection] = selectValue(string(t.Direction))
	}

	numbers := []struct {
		name string
		v    *float64
	}{
		{types.PropSize, t.PositionSize},
		{types.PropEntryPrice, t.EntryPrice},
		{types.PropExitPrice, t.ExitPrice},
		{types.PropPnL, t.PnL},
		{types.PropFees, t.Fees},
		{types.PropCommissions, t.Commissions},
	}
	for _, n := range numbers {
		if n.v != nil {
			props[n.name] = map[string]any{"number": *n.v}
		}
	}

	if ts, ok := normalize.Instant(t.EntryTime); ok {
		props[types.PropEntryTime] = dateValue(ts.Format(normalize.InstantLayout))
	}
	if ts, ok := normalize.Instant(t.ExitTime); ok {
		props[types.PropExitTime] = dateValue(ts.Format(normalize.InstantLayout))
	}
	if !t.ExtractedAt.IsZero() {
		props[types.PropExtractedAt] = dateValue(t.ExtractedAt.UTC().Format(normalize.InstantLayout))
	}

	if t.DurationDisplay != "" {
		props[types.PropDuration] = map[string]any{"rich_text": textValue(t.DurationDisplay)}
	}
	if r := t.Result(); r != "" {
		props[types.PropResult] = selectValue(r)
	}
	if a := accountLabel(t); a != "" {
		props[types.PropAccount] = map[string]any{"rich_text": textValue(a)}
	}
	return props
}

func accountLabel(t types.Trade) string {
	switch {
	case t.AccountName != "" && t.AccountID != "" && t.AccountName != t.AccountID:
		return t.AccountName + " (" + t.AccountID + ")"
	case t.AccountID != "":
		return t.AccountID
	default:
		return t.AccountName
	}
}
