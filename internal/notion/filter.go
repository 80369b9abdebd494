package notion

import "notion-trade-sync/internal/types"

// EncodeFilter renders a filter in Notion's query syntax. A single condition
// is sent bare, several as an "and" compound. An empty filter returns nil.
func EncodeFilter(f types.Filter) map[string]any {
	switch len(f.And) {
	case 0:
		return nil
	case 1:
		return encodeCondition(f.And[0])
	}
	and := make([]map[string]any, 0, len(f.And))
	for _, c := range f.And {
		and = append(and, encodeCondition(c))
	}
	return map[string]any{"and": and}
}

func encodeCondition(c types.Condition) map[string]any {
	out := map[string]any{"property": c.Property}
	switch c.Kind {
	case types.KindNumber:
		out["number"] = map[string]any{"equals": c.Number}
	case types.KindTitle, types.KindRichText, types.KindSelect:
		out[string(c.Kind)] = map[string]any{"equals": c.Text}
	default:
		out["rich_text"] = map[string]any{"equals": c.Text}
	}
	return out
}
