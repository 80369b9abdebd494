package grid

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CellText returns the trimmed text of the row's cell for field, or "".
func CellText(row *goquery.Selection, field string) string {
	if row == nil || field == "" {
		return ""
	}
	cell := row.Find(`[data-field="` + escapeAttr(field) + `"]`).First()
	if cell.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(cell.Text())
}

// FirstNonEmpty tries each data-field name in order and returns the first
// non-empty cell text.
func FirstNonEmpty(row *goquery.Selection, names []string) string {
	for _, name := range names {
		if v := CellText(row, name); v != "" {
			return v
		}
	}
	return ""
}

// Read returns the raw text for a logical field using FieldAliases.
func Read(row *goquery.Selection, field Field) string {
	names, ok := FieldAliases[field]
	if !ok {
		names = []string{string(field)}
	}
	return FirstNonEmpty(row, names)
}

// RawRow is the raw text of every logical field for one grid row.
type RawRow map[Field]string

// Extract reads every field in FieldAliases from row.
func Extract(row *goquery.Selection) RawRow {
	raw := make(RawRow, len(FieldAliases))
	for field := range FieldAliases {
		raw[field] = Read(row, field)
	}
	return raw
}

// Fields lists the data-field attributes present in row, in document order.
func Fields(row *goquery.Selection) []string {
	var names []string
	if row == nil {
		return names
	}
	row.Find("[data-field]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("data-field"); ok {
			names = append(names, v)
		}
	})
	return names
}

func escapeAttr(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}
