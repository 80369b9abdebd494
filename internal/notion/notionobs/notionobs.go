package notionobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/trace"
	"notion-trade-sync/internal/types"
)

// observableStore wraps a RemoteStore with observability (logging & tracing)
type observableStore struct {
	store interfaces.RemoteStore
}

var _ interfaces.RemoteStore = (*observableStore)(nil)

// Wrap wraps a store with observability middleware
func Wrap(store interfaces.RemoteStore) interfaces.RemoteStore {
	return &observableStore{store: store}
}

// WrapFactory wraps every store the factory builds.
func WrapFactory(f interfaces.RemoteStoreFactory) interfaces.RemoteStoreFactory {
	return func(s types.Settings) interfaces.RemoteStore {
		return Wrap(f(s))
	}
}

func (o *observableStore) Create(ctx context.Context, trade types.Trade) (string, error) {
	ctx, span := trace.StartSpan(ctx, "notion.Create", oteltrace.WithAttributes(
		attribute.String("trade.canonical_id", trade.CanonicalID),
		attribute.String("trade.symbol", trade.Symbol),
	))
	defer span.End()

	logger.DebugSkip(ctx, 1, "Creating page", "canonical_id", trade.CanonicalID, "symbol", trade.Symbol)

	id, err := o.store.Create(ctx, trade)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorWithErrSkip(ctx, 1, "Failed to create page", err,
			"canonical_id", trade.CanonicalID,
			"symbol", trade.Symbol,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Page created", "canonical_id", trade.CanonicalID, "page_id", id)
	return id, nil
}

func (o *observableStore) Query(ctx context.Context, filter types.Filter, pageSize int) ([]types.Record, error) {
	ctx, span := trace.StartSpan(ctx, "notion.Query", oteltrace.WithAttributes(
		attribute.Int("query.conditions", len(filter.And)),
		attribute.Int("query.page_size", pageSize),
	))
	defer span.End()

	records, err := o.store.Query(ctx, filter, pageSize)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.WarnSkip(ctx, 1, "Database query failed", "conditions", len(filter.And), "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("query.results", len(records)))
	logger.DebugSkip(ctx, 1, "Database queried", "conditions", len(filter.And), "results", len(records))
	return records, nil
}

func (o *observableStore) Describe(ctx context.Context) (types.DatabaseSummary, error) {
	ctx, span := trace.StartSpan(ctx, "notion.Describe")
	defer span.End()

	db, err := o.store.Describe(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorWithErrSkip(ctx, 1, "Failed to retrieve database", err)
		return db, err
	}

	logger.InfoSkip(ctx, 1, "Database retrieved", "database_id", db.ID, "title", db.Title)
	return db, nil
}
