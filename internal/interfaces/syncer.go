package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"notion-trade-sync/internal/types"
)

// DuplicateChecker decides whether a trade already exists remotely.
type DuplicateChecker interface {
	Check(ctx context.Context, trade types.Trade) types.DuplicateCheck
}

// Syncer runs one extraction pass over doc. trigger is "manual" or "change".
type Syncer interface {
	Run(ctx context.Context, doc *goquery.Document, trigger string) (types.SyncResult, error)
}

// Notifier reports a finished pass to the user.
type Notifier interface {
	NotifyPass(ctx context.Context, result types.SyncResult) error
}

// Journal keeps a local record of every trade a pass handled.
type Journal interface {
	Append(entry types.JournalEntry) error
}
