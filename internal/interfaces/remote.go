package interfaces

import (
	"context"

	"notion-trade-sync/internal/types"
)

// RemoteStore is the collection trades are mirrored into.
type RemoteStore interface {
	// Create writes one trade and returns the remote record id.
	Create(ctx context.Context, trade types.Trade) (string, error)

	// Query returns at most pageSize records matching filter.
	Query(ctx context.Context, filter types.Filter, pageSize int) ([]types.Record, error)

	// Describe returns the collection's id and title.
	Describe(ctx context.Context) (types.DatabaseSummary, error)
}

// RemoteStoreFactory builds a store bound to the given credentials.
type RemoteStoreFactory func(settings types.Settings) RemoteStore
