package page

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/grid"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
)

// Watcher polls a source and emits an event whenever the trade grid or the
// selected account changes. The latest snapshot is kept for the pass that
// the event eventually triggers.
type Watcher struct {
	source    interfaces.DocumentSource
	interval  time.Duration
	locator   *grid.Locator
	selectors grid.Selectors
	events    chan struct{}

	mu          sync.Mutex
	fingerprint string
	latest      *goquery.Document
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewWatcher(source interfaces.DocumentSource, interval time.Duration, selectors grid.Selectors, panelID string) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		source:    source,
		interval:  interval,
		locator:   grid.NewLocator(selectors, panelID),
		selectors: selectors,
		events:    make(chan struct{}, 64),
	}
}

// Events delivers one value per observed change.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Latest returns the most recent snapshot, or nil before the first poll.
func (w *Watcher) Latest() *goquery.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

// Running reports whether the polling loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Start begins polling. Calling Start on a running watcher does nothing.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	logger.Info(ctx, "Page observer started", "interval", w.interval)

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				logger.Warn(ctx, "Page poll failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info(context.Background(), "Page observer stopped")
}

// Poll fetches one snapshot and emits an event if it differs from the last.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	doc, err := w.source.Fetch(ctx)
	if err != nil {
		return false, err
	}
	fp := Fingerprint(doc, w.locator, w.selectors)

	w.mu.Lock()
	changed := fp != w.fingerprint
	w.fingerprint = fp
	w.latest = doc
	w.mu.Unlock()

	if changed {
		select {
		case w.events <- struct{}{}:
		default:
		}
	}
	return changed, nil
}

// Fingerprint summarizes what a pass would see: the account selector text
// and the markup of every row in the closed-trade grid.
func Fingerprint(doc *goquery.Document, locator *grid.Locator, selectors grid.Selectors) string {
	var b strings.Builder
	b.WriteString(grid.AccountSelectorText(doc, selectors))
	b.WriteByte('|')
	if panel := locator.Locate(doc); panel != nil {
		locator.Rows(panel).Each(func(_ int, row *goquery.Selection) {
			html, _ := goquery.OuterHtml(row)
			b.WriteString(html)
		})
	}
	return grid.Hash(b.String())
}
