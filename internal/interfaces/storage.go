package interfaces

import (
	"context"
	"time"

	"notion-trade-sync/internal/types"
)

type SettingsStore interface {
	Load(ctx context.Context) (types.Settings, error)
	Save(ctx context.Context, settings types.Settings) error
}

// CounterStore persists sync counters. Writes are last-writer-wins.
type CounterStore interface {
	Load(ctx context.Context) (types.Counters, error)
	Save(ctx context.Context, counters types.Counters) error
}

// PassLock is a lease shared by every process using the same state file.
// Acquire reports false while another owner holds an unexpired lease on key.
type PassLock interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}
