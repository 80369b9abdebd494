// Package dedup decides whether a trade already exists in the remote store
// by running an ordered cascade of existence queries.
package dedup

import (
	"context"
	"fmt"
	"time"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/types"
)

// Strategy names reported in DuplicateCheck.MatchedBy.
const (
	ByTradeID         = "trade_id"
	ByHashID          = "hash_id"
	BySymbolEntrySize = "symbol_entry_size"
	BySymbolEntry     = "symbol_entry"
)

const (
	defaultPageSize = 5
	defaultTimeout  = 15 * time.Second
)

// Strategy builds one existence query. ok is false when the trade lacks the
// fields the strategy needs; such strategies are not attempted.
type Strategy struct {
	Name   string
	Filter func(t types.Trade) (filter types.Filter, ok bool)
}

// Cascade is the strategy order, strongest first. The last two are loose:
// distinct trades with the same symbol and entry price match each other.
var Cascade = []Strategy{
	{Name: ByTradeID, Filter: tradeIDFilter},
	{Name: ByHashID, Filter: hashIDFilter},
	{Name: BySymbolEntrySize, Filter: symbolEntrySizeFilter},
	{Name: BySymbolEntry, Filter: symbolEntryFilter},
}

func tradeIDFilter(t types.Trade) (types.Filter, bool) {
	if t.CanonicalID == "" {
		return types.Filter{}, false
	}
	return types.Equals(titleIs(t.CanonicalID)), true
}

// hashIDFilter covers records written under the derived id before the
// platform id was available.
func hashIDFilter(t types.Trade) (types.Filter, bool) {
	if t.HashID == "" || t.HashID == t.CanonicalID {
		return types.Filter{}, false
	}
	return types.Equals(titleIs(t.HashID)), true
}

func symbolEntrySizeFilter(t types.Trade) (types.Filter, bool) {
	if t.Symbol == "" || t.EntryPrice == nil || t.PositionSize == nil {
		return types.Filter{}, false
	}
	return types.AllOf(
		types.Condition{Property: types.PropSymbol, Kind: types.KindSelect, Text: t.Symbol},
		types.Condition{Property: types.PropEntryPrice, Kind: types.KindNumber, Number: *t.EntryPrice},
		types.Condition{Property: types.PropSize, Kind: types.KindNumber, Number: *t.PositionSize},
	), true
}

func symbolEntryFilter(t types.Trade) (types.Filter, bool) {
	if t.Symbol == "" || t.EntryPrice == nil {
		return types.Filter{}, false
	}
	return types.AllOf(
		types.Condition{Property: types.PropSymbol, Kind: types.KindSelect, Text: t.Symbol},
		types.Condition{Property: types.PropEntryPrice, Kind: types.KindNumber, Number: *t.EntryPrice},
	), true
}

func titleIs(v string) types.Condition {
	return types.Condition{Property: types.PropTradeID, Kind: types.KindTitle, Text: v}
}

// Resolver runs the cascade against a RemoteStore.
type Resolver struct {
	store      interfaces.RemoteStore
	pageSize   int
	timeout    time.Duration
	strategies []Strategy
}

var _ interfaces.DuplicateChecker = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithPageSize bounds each existence query.
func WithPageSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// WithTimeout bounds each remote query.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithStrategies replaces the cascade.
func WithStrategies(s []Strategy) Option {
	return func(r *Resolver) {
		r.strategies = s
	}
}

// NewResolver creates a resolver over store.
func NewResolver(store interfaces.RemoteStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		pageSize:   defaultPageSize,
		timeout:    defaultTimeout,
		strategies: Cascade,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check runs the strategies in order and stops at the first non-empty result.
// A failed query counts as no match and the cascade continues. When nothing
// matches the trade is reported as not duplicate, with any query errors
// attached.
func (r *Resolver) Check(ctx context.Context, trade types.Trade) types.DuplicateCheck {
	var result types.DuplicateCheck

	for _, s := range r.strategies {
		filter, ok := s.Filter(trade)
		if !ok {
			continue
		}
		result.Attempted++

		records, err := r.query(ctx, filter)
		if err != nil {
			logger.Warn(ctx, "Duplicate query failed, trying next strategy",
				"strategy", s.Name,
				"canonical_id", trade.CanonicalID,
				"error", err,
			)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", s.Name, err))
			continue
		}
		if len(records) > 0 {
			result.IsDuplicate = true
			result.MatchedBy = s.Name
			result.MatchCount = len(records)
			logger.Debug(ctx, "Duplicate found",
				"strategy", s.Name,
				"canonical_id", trade.CanonicalID,
				"matches", len(records),
			)
			return result
		}
	}

	if result.FailedOpen() {
		logger.Warn(ctx, "Every duplicate query failed, treating trade as new",
			"canonical_id", trade.CanonicalID,
			"attempted", result.Attempted,
		)
	}
	return result
}

func (r *Resolver) query(ctx context.Context, filter types.Filter) ([]types.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.store.Query(ctx, filter, r.pageSize)
}
