package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/types"
)

type SettingsRepo struct {
	db *gorm.DB
}

var _ interfaces.SettingsStore = (*SettingsRepo)(nil)

func NewSettingsRepo(db *gorm.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Load returns the stored settings, or zero settings before the first save.
func (r *SettingsRepo) Load(ctx context.Context) (types.Settings, error) {
	var row SettingsRow
	err := r.db.WithContext(ctx).First(&row, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Settings{}, nil
	}
	if err != nil {
		return types.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return types.Settings{
		Token:                     row.Token,
		StoreID:                   row.StoreID,
		AutoSyncEnabled:           row.AutoSyncEnabled,
		RealTimeMonitoringEnabled: row.RealTimeMonitoringEnabled,
	}, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s types.Settings) error {
	row := SettingsRow{
		ID:                        singletonID,
		Token:                     strings.TrimSpace(s.Token),
		StoreID:                   strings.TrimSpace(s.StoreID),
		AutoSyncEnabled:           s.AutoSyncEnabled,
		RealTimeMonitoringEnabled: s.RealTimeMonitoringEnabled,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Seed fills empty credentials from env-provided values. Stored values win.
func (r *SettingsRepo) Seed(ctx context.Context, token, storeID string) error {
	current, err := r.Load(ctx)
	if err != nil {
		return err
	}
	changed := false
	if current.Token == "" && token != "" {
		current.Token = token
		changed = true
	}
	if current.StoreID == "" && storeID != "" {
		current.StoreID = storeID
		changed = true
	}
	if !changed {
		return nil
	}
	logger.Info(ctx, "Seeding settings from environment")
	return r.Save(ctx, current)
}

type CounterRepo struct {
	db *gorm.DB
}

var _ interfaces.CounterStore = (*CounterRepo)(nil)

func NewCounterRepo(db *gorm.DB) *CounterRepo {
	return &CounterRepo{db: db}
}

func (r *CounterRepo) Load(ctx context.Context) (types.Counters, error) {
	var row CounterRow
	err := r.db.WithContext(ctx).First(&row, singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Counters{}, nil
	}
	if err != nil {
		return types.Counters{}, fmt.Errorf("load counters: %w", err)
	}
	return types.Counters{
		LifetimeTradeCount: row.LifetimeTradeCount,
		TodayTradeCount:    row.TodayTradeCount,
		LastUpdateDate:     row.LastUpdateDate,
	}, nil
}

// Save overwrites the stored counters; concurrent writers are last-writer-wins.
func (r *CounterRepo) Save(ctx context.Context, c types.Counters) error {
	row := CounterRow{
		ID:                 singletonID,
		LifetimeTradeCount: c.LifetimeTradeCount,
		TodayTradeCount:    c.TodayTradeCount,
		LastUpdateDate:     c.LastUpdateDate,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save counters: %w", err)
	}
	return nil
}
