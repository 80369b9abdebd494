// Package syncer drives extraction passes: it builds trades from the page,
// skips those already handled, checks the remote store for duplicates,
// submits the rest and keeps counters.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"notion-trade-sync/internal/dedup"
	"notion-trade-sync/internal/grid"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/types"
)

// Pass triggers.
const (
	TriggerManual = "manual"
	TriggerChange = "change"
)

// Config tunes a pass.
type Config struct {
	Selectors     grid.Selectors
	PanelID       string
	PageSize      int
	RemoteTimeout time.Duration
	PassTimeout   time.Duration
	// LockPoll is how often a pass retries a lease held by another process.
	LockPoll time.Duration
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 5
	}
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = 15 * time.Second
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = 5 * time.Minute
	}
	if c.LockPoll <= 0 {
		c.LockPoll = 200 * time.Millisecond
	}
	return c
}

// Orchestrator runs passes for one page session.
type Orchestrator struct {
	cfg      Config
	settings interfaces.SettingsStore
	counters interfaces.CounterStore
	stores   interfaces.RemoteStoreFactory
	builder  *grid.Builder
	session  *Session
	turn     *semaphore.Weighted
	lock     interfaces.PassLock
	journal  interfaces.Journal
	notifier interfaces.Notifier
	now      func() time.Time
}

var _ interfaces.Syncer = (*Orchestrator)(nil)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithJournal(j interfaces.Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithPassLock makes every pass hold a per-account lease in l, shared with
// other processes using the same state.
func WithPassLock(l interfaces.PassLock) Option {
	return func(o *Orchestrator) { o.lock = l }
}

// WithClock replaces time.Now for capture timestamps and the counter date.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(cfg Config, settings interfaces.SettingsStore, counters interfaces.CounterStore, stores interfaces.RemoteStoreFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg.withDefaults(),
		settings: settings,
		counters: counters,
		stores:   stores,
		session:  NewSession(),
		turn:     semaphore.NewWeighted(1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.builder = grid.NewBuilder(grid.NewLocator(o.cfg.Selectors, o.cfg.PanelID), o.now)
	return o
}

// Session returns the live session.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// ResetSession closes the current session, as on page navigation.
func (o *Orchestrator) ResetSession() {
	o.session.Close()
}

// Run performs one pass over doc. Missing credentials stop the pass before
// any extraction. Passes on one session run one at a time: a trigger that
// arrives while a pass is running waits its turn and then runs its own pass
// over its own document. With a pass lock, a pass also waits for other
// processes working on the same account.
func (o *Orchestrator) Run(ctx context.Context, doc *goquery.Document, trigger string) (types.SyncResult, error) {
	settings, err := o.settings.Load(ctx)
	if err != nil {
		return types.SyncResult{Error: err.Error(), Message: "could not load settings"}, err
	}
	if err := RequireSettings(settings); err != nil {
		return types.SyncResult{Error: err.Error(), Message: err.Error()}, err
	}
	if trigger == TriggerChange && !settings.AutoSyncEnabled {
		logger.Debug(ctx, "Auto sync disabled, ignoring page change")
		return types.SyncResult{Success: true, Message: "auto sync disabled"}, nil
	}

	account := grid.ParseAccount(grid.AccountSelectorText(doc, o.cfg.Selectors))

	if err := o.turn.Acquire(ctx, 1); err != nil {
		return types.SyncResult{Error: err.Error(), Message: "cancelled while waiting for the running pass"}, err
	}
	defer o.turn.Release(1)

	return o.pass(ctx, doc, account, settings, trigger)
}

func (o *Orchestrator) pass(ctx context.Context, doc *goquery.Document, account types.AccountContext, settings types.Settings, trigger string) (types.SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PassTimeout)
	defer cancel()

	result := types.SyncResult{PassID: uuid.NewString()}
	if o.lock != nil {
		if err := o.lease(ctx, account.Key(), result.PassID); err != nil {
			logger.ErrorWithErr(ctx, "Could not take pass lock", err, "pass_id", result.PassID, "account", account.Key())
			result.Error = err.Error()
			result.Message = "could not take the pass lock for this account"
			return result, err
		}
		defer o.unlease(ctx, account.Key(), result.PassID)
	}

	op := logger.StartOperation(ctx, "sync.pass",
		"pass_id", result.PassID,
		"trigger", trigger,
		"account", account.Key(),
	)
	defer func() {
		fields := []any{"synced", result.SuccessCount, "duplicates", result.DuplicateCount, "failed", result.FailedCount}
		if err := ctx.Err(); err != nil {
			op.EndWithError(err, fields...)
			return
		}
		op.End(fields...)
	}()
	ctx = op.Context()

	if o.session.SwitchAccount(account) {
		logger.Info(ctx, "Account changed, processed set cleared",
			"account_type", account.AccountType,
			"account_id", account.AccountID,
		)
	}

	trades := o.builder.Build(ctx, doc, account)
	pending := o.session.Unprocessed(trades)
	result.Candidates = len(pending)
	logger.Info(ctx, "Extraction pass started",
		"pass_id", result.PassID,
		"extracted", len(trades),
		"pending", len(pending),
	)

	store := o.stores(settings)
	resolver := dedup.NewResolver(store,
		dedup.WithPageSize(o.cfg.PageSize),
		dedup.WithTimeout(o.cfg.RemoteTimeout),
	)

	// rows are handled one at a time in document order
	for _, trade := range pending {
		entry := types.JournalEntry{PassID: result.PassID, Trigger: trigger, Trade: trade}

		check := resolver.Check(ctx, trade)
		if check.IsDuplicate {
			o.session.MarkProcessed(trade.CanonicalID)
			result.DuplicateCount++
			entry.Outcome, entry.MatchedBy = types.OutcomeDuplicate, check.MatchedBy
			o.record(ctx, entry)
			logger.Trade(ctx, trade.CanonicalID, trade.Symbol, string(trade.Direction), types.OutcomeDuplicate,
				"matched_by", check.MatchedBy, "matches", check.MatchCount)
			continue
		}

		pageID, err := o.create(ctx, store, trade)
		if err != nil {
			result.FailedCount++
			entry.Outcome, entry.Error = types.OutcomeFailed, err.Error()
			o.record(ctx, entry)
			logger.ErrorWithErr(ctx, "Trade submission failed, will retry next pass", err,
				"canonical_id", trade.CanonicalID,
				"symbol", trade.Symbol,
			)
			continue
		}

		o.session.MarkProcessed(trade.CanonicalID)
		result.SuccessCount++
		entry.Outcome, entry.PageID = types.OutcomeSynced, pageID
		o.record(ctx, entry)
		logger.Trade(ctx, trade.CanonicalID, trade.Symbol, string(trade.Direction), types.OutcomeSynced,
			"page_id", pageID, "fail_open", check.FailedOpen())
	}

	if result.SuccessCount > 0 {
		if err := o.updateCounters(ctx, result.SuccessCount); err != nil {
			logger.ErrorWithErr(ctx, "Failed to update counters", err, "synced", result.SuccessCount)
		}
	}

	result.Success = true
	result.Message = Message(result)
	o.session.addTotals(result)

	if o.notifier != nil && (result.SuccessCount > 0 || result.FailedCount > 0) {
		if err := o.notifier.NotifyPass(ctx, result); err != nil {
			logger.Warn(ctx, "Notification failed", "error", err)
		}
	}
	return result, nil
}

// lease polls the pass lock until it is taken or ctx ends. The lease outlives
// the pass timeout so a live pass never loses it.
func (o *Orchestrator) lease(ctx context.Context, key, owner string) error {
	ttl := o.cfg.PassTimeout + o.cfg.RemoteTimeout
	ticker := time.NewTicker(o.cfg.LockPoll)
	defer ticker.Stop()

	for {
		ok, err := o.lock.Acquire(ctx, key, owner, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		logger.Debug(ctx, "Pass lock held elsewhere, waiting", "account", key)
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for pass lock on %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) unlease(ctx context.Context, key, owner string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.RemoteTimeout)
	defer cancel()
	if err := o.lock.Release(ctx, key, owner); err != nil {
		logger.Warn(ctx, "Failed to release pass lock, it will expire", "account", key, "error", err)
	}
}

func (o *Orchestrator) create(ctx context.Context, store interfaces.RemoteStore, trade types.Trade) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RemoteTimeout)
	defer cancel()
	return store.Create(ctx, trade)
}

// updateCounters is a plain read-modify-write; concurrent writers race and
// the last one wins.
func (o *Orchestrator) updateCounters(ctx context.Context, synced int) error {
	c, err := o.counters.Load(ctx)
	if err != nil {
		return err
	}
	return o.counters.Save(ctx, ApplyCounters(c, synced, LocalDate(o.now())))
}

func (o *Orchestrator) record(ctx context.Context, e types.JournalEntry) {
	if o.journal == nil {
		return
	}
	e.Time = o.now().UTC().Format(time.RFC3339)
	if err := o.journal.Append(e); err != nil {
		logger.Warn(ctx, "Failed to append journal entry", "error", err)
	}
}
