package grid

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/types"
)

// accountTypes are checked in order against the lowercased selector text.
var accountTypes = []struct {
	keyword string
	name    string
}{
	{"express", "Express Funded"},
	{"funded", "Funded"},
	{"combine", "Combine"},
	{"practice", "Practice"},
	{"eval", "Evaluation"},
	{"live", "Live"},
	{"sim", "Simulated"},
}

// account numbers look like "50KTC-V2-123456-789" or "S1JUL2512345"
var accountIDToken = regexp.MustCompile(`(?i)\b[a-z0-9]+(?:-[a-z0-9]+)*\b`)

// AccountSelectorText returns the trimmed text of the account selector, or "".
func AccountSelectorText(doc *goquery.Document, selectors Selectors) string {
	if doc == nil {
		return ""
	}
	sel := doc.Find(selectors.withDefaults().AccountSelector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// ParseAccount splits the selector text into type, name and id.
// Unrecognized text still yields a context keyed by the raw text.
func ParseAccount(text string) types.AccountContext {
	text = strings.Join(strings.Fields(text), " ")
	ctx := types.AccountContext{SelectorText: text, AccountType: "Unknown"}
	if text == "" {
		return ctx
	}

	lower := strings.ToLower(text)
	for _, at := range accountTypes {
		if strings.Contains(lower, at.keyword) {
			ctx.AccountType = at.name
			break
		}
	}

	id := accountID(text)
	ctx.AccountID = id

	name := text
	if id != "" {
		name = strings.Replace(name, id, "", 1)
	}
	name = strings.Trim(name, " |·-—:()[]")
	name = strings.Join(strings.Fields(strings.NewReplacer("|", " ", "·", " ", "—", " ").Replace(name)), " ")
	ctx.AccountName = strings.Trim(name, " -:")
	if ctx.AccountName == "" {
		ctx.AccountName = ctx.AccountID
	}
	return ctx
}

// accountID picks the first dashed token containing a digit, else the longest
// plain token of at least six characters containing a digit.
func accountID(text string) string {
	var plain string
	for _, tok := range accountIDToken.FindAllString(text, -1) {
		if !strings.ContainsAny(tok, "0123456789") {
			continue
		}
		if strings.Contains(tok, "-") {
			return tok
		}
		if len(tok) >= 6 && len(tok) > len(plain) {
			plain = tok
		}
	}
	return plain
}
