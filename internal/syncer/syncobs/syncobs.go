package syncobs

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/trace"
	"notion-trade-sync/internal/types"
)

type observableSyncer struct {
	syncer interfaces.Syncer
}

var _ interfaces.Syncer = (*observableSyncer)(nil)

// Wrap wraps a syncer with observability middleware
func Wrap(s interfaces.Syncer) interfaces.Syncer {
	return &observableSyncer{syncer: s}
}

func (o *observableSyncer) Run(ctx context.Context, doc *goquery.Document, trigger string) (types.SyncResult, error) {
	ctx, span := trace.StartSpan(ctx, "sync.Run", oteltrace.WithAttributes(
		attribute.String("sync.trigger", trigger),
	))
	defer span.End()

	logger.InfoSkip(ctx, 1, "Sync requested", "trigger", trigger)

	result, err := o.syncer.Run(ctx, doc, trigger)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sync refused", err, "trigger", trigger)
		return result, err
	}

	span.SetAttributes(
		attribute.String("sync.pass_id", result.PassID),
		attribute.Int("sync.synced", result.SuccessCount),
		attribute.Int("sync.duplicates", result.DuplicateCount),
		attribute.Int("sync.failed", result.FailedCount),
	)
	logger.InfoSkip(ctx, 1, "Sync completed",
		"trigger", trigger,
		"pass_id", result.PassID,
		"synced", result.SuccessCount,
		"duplicates", result.DuplicateCount,
		"failed", result.FailedCount,
		"message", result.Message,
	)
	return result, nil
}
