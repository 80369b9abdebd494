package commands

import (
	"context"
	"fmt"
	"time"

	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/page"
	"notion-trade-sync/internal/scheduler"
	"notion-trade-sync/internal/syncer"
)

type WatchConfig struct {
	Debounce     time.Duration
	SettingsPoll time.Duration
}

// Watch keeps the page observer in step with the real-time monitoring
// toggle and turns quiet periods after page changes into change-triggered
// passes. It returns when ctx ends.
func (c *Commands) Watch(ctx context.Context, w *page.Watcher, cfg WatchConfig) error {
	if cfg.SettingsPoll <= 0 {
		cfg.SettingsPoll = 5 * time.Second
	}
	defer w.Stop()

	go scheduler.Debounce(ctx, w.Events(), cfg.Debounce, func(ctx context.Context) {
		c.changePass(ctx, w)
	})

	c.applyMonitoring(ctx, w)
	ticker := time.NewTicker(cfg.SettingsPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Watch stopped")
			return nil
		case <-ticker.C:
			c.applyMonitoring(ctx, w)
		}
	}
}

// applyMonitoring starts or stops the observer to match the stored toggle.
func (c *Commands) applyMonitoring(ctx context.Context, w *page.Watcher) {
	settings, err := c.settings.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "Could not reload settings", "error", err)
		return
	}
	switch {
	case settings.RealTimeMonitoringEnabled && !w.Running():
		w.Start(ctx)
	case !settings.RealTimeMonitoringEnabled && w.Running():
		w.Stop()
	}
}

func (c *Commands) changePass(ctx context.Context, w *page.Watcher) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithErr(ctx, "Panic in change-triggered sync", fmt.Errorf("panic: %v", r))
		}
	}()

	doc := w.Latest()
	if doc == nil {
		return
	}
	if _, err := c.syncer.Run(ctx, doc, syncer.TriggerChange); err != nil {
		logger.Warn(ctx, "Change-triggered sync did not run", "error", err)
	}
}
