// Package commands is the user-facing surface: every operation returns a
// structured result and never lets an error or panic escape.
package commands

import (
	"context"
	"fmt"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/store"
	"notion-trade-sync/internal/syncer"
	"notion-trade-sync/internal/types"
)

type Commands struct {
	settings interfaces.SettingsStore
	stores   interfaces.RemoteStoreFactory
	syncer   interfaces.Syncer
	source   interfaces.DocumentSource
}

func New(settings interfaces.SettingsStore, stores interfaces.RemoteStoreFactory, s interfaces.Syncer, source interfaces.DocumentSource) *Commands {
	return &Commands{settings: settings, stores: stores, syncer: s, source: source}
}

// TestConnection describes the configured database using the stored credentials.
func (c *Commands) TestConnection(ctx context.Context) (res types.ConnectionResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.ErrorWithErr(ctx, "Panic in connection test", err)
			res = types.ConnectionResult{Error: err.Error()}
		}
	}()

	settings, err := c.settings.Load(ctx)
	if err != nil {
		return types.ConnectionResult{Error: err.Error()}
	}
	if err := syncer.RequireSettings(settings); err != nil {
		return types.ConnectionResult{Error: err.Error()}
	}

	summary, err := c.stores(settings).Describe(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Connection test failed", err)
		return types.ConnectionResult{Error: err.Error()}
	}
	logger.Info(ctx, "Connection test succeeded", "database", summary.Title, "database_id", summary.ID)
	return types.ConnectionResult{Success: true, Database: &summary}
}

// ManualSync fetches the page and runs a pass immediately.
func (c *Commands) ManualSync(ctx context.Context) (res types.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.ErrorWithErr(ctx, "Panic in manual sync", err)
			res = types.SyncResult{Error: err.Error(), Message: "sync failed"}
		}
	}()

	doc, err := c.source.Fetch(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Could not read page", err)
		return types.SyncResult{Error: err.Error(), Message: "could not read page"}
	}

	result, err := c.syncer.Run(ctx, doc, syncer.TriggerManual)
	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}
	return result
}

// SaveSettings validates credential formats and persists the settings.
func (c *Commands) SaveSettings(ctx context.Context, s types.Settings) (res types.SaveResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.ErrorWithErr(ctx, "Panic in save settings", err)
			res = types.SaveResult{Error: err.Error()}
		}
	}()

	if err := store.ValidateSettings(s); err != nil {
		logger.Warn(ctx, "Rejected settings", "error", err)
		return types.SaveResult{Error: err.Error()}
	}
	if err := c.settings.Save(ctx, s); err != nil {
		logger.ErrorWithErr(ctx, "Failed to save settings", err)
		return types.SaveResult{Error: err.Error()}
	}
	logger.Info(ctx, "Settings saved",
		"auto_sync", s.AutoSyncEnabled,
		"real_time_monitoring", s.RealTimeMonitoringEnabled,
	)
	return types.SaveResult{Success: true}
}
