package grid

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/normalize"
	"notion-trade-sync/internal/types"
)

// Builder turns the located grid into validated Trade values.
type Builder struct {
	locator *Locator
	now     func() time.Time
}

// NewBuilder creates a builder over locator. now defaults to time.Now.
func NewBuilder(locator *Locator, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{locator: locator, now: now}
}

// Build extracts every closed trade on the page in row order. Rows that are
// not yet closed trades are skipped without error.
func (b *Builder) Build(ctx context.Context, doc *goquery.Document, account types.AccountContext) []types.Trade {
	match := b.locator.LocateMatch(doc)
	if match == nil {
		logger.Debug(ctx, "Closed-trade grid not found")
		return nil
	}

	logger.Debug(ctx, "Closed-trade grid located",
		"via", match.Via,
		"signal", match.Signal,
		"rows", match.Rows,
	)

	capturedAt := b.now().UTC()
	var trades []types.Trade
	b.locator.Rows(match.Panel).Each(func(i int, row *goquery.Selection) {
		trade, ok := BuildRow(Extract(row), account, capturedAt)
		if !ok {
			if logger.IsDebugEnabled() {
				logger.Debug(ctx, "Skipping incomplete row", "index", i, "fields", Fields(row))
			}
			return
		}
		trades = append(trades, trade)
	})
	return trades
}

// BuildRow normalizes one raw row. It returns false when the row is not a
// closed trade: no symbol, no entry price, or neither exit price nor exit time.
func BuildRow(raw RawRow, account types.AccountContext, capturedAt time.Time) (types.Trade, bool) {
	symbol := normalize.Symbol(raw[FieldSymbol])
	entryPrice := normalize.Number(raw[FieldEntryPrice])
	exitPrice := normalize.Number(raw[FieldExitPrice])
	exitText := raw[FieldExitTime]
	hasExitTime := exitText != "" && exitText != "-" && exitText != "0"

	if symbol == "" || entryPrice == nil || (exitPrice == nil && !hasExitTime) {
		return types.Trade{}, false
	}

	trade := types.Trade{
		ExternalID:      raw[FieldID],
		Symbol:          symbol,
		Direction:       normalize.Direction(raw[FieldDirection]),
		DirectionText:   raw[FieldDirection],
		PositionSize:    normalize.Number(raw[FieldPositionSize]),
		EntryPrice:      entryPrice,
		ExitPrice:       exitPrice,
		EntryTime:       normalize.DateTime(raw[FieldEntryTime]),
		PnL:             normalize.Number(raw[FieldPnL]),
		Fees:            normalize.Number(raw[FieldFees]),
		Commissions:     normalize.Number(raw[FieldCommissions]),
		DurationDisplay: raw[FieldDuration],
		ExtractedAt:     capturedAt,
		AccountType:     account.AccountType,
		AccountName:     account.AccountName,
		AccountID:       account.AccountID,
	}
	if hasExitTime {
		trade.ExitTime = normalize.DateTime(exitText)
	}

	trade.HashID = DeriveID(
		symbol,
		raw[FieldEntryPrice],
		raw[FieldPositionSize],
		raw[FieldDirection],
		raw[FieldEntryTime],
		capturedAt,
	)
	trade.CanonicalID = trade.HashID
	if trade.ExternalID != "" {
		trade.CanonicalID = trade.ExternalID
	}
	return trade, true
}
