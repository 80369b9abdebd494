package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"notion-trade-sync/internal/commands"
	"notion-trade-sync/internal/eod"
	"notion-trade-sync/internal/eod/eodobs"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/notify"
	"notion-trade-sync/internal/notion"
	"notion-trade-sync/internal/notion/notionobs"
	"notion-trade-sync/internal/page"
	"notion-trade-sync/internal/storage"
	"notion-trade-sync/internal/store"
	"notion-trade-sync/internal/syncer"
	"notion-trade-sync/internal/syncer/syncobs"
	"notion-trade-sync/internal/trace"
	"notion-trade-sync/internal/tradelog"
)

// app holds everything a subcommand may need.
type app struct {
	cfg      *store.Config
	settings *storage.SettingsRepo
	journal  *tradelog.Journal
	source   interfaces.DocumentSource
	syncer   *syncer.Orchestrator
	commands *commands.Commands
}

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig falls back to defaults when the file does not exist.
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn(ctx, "Config file not found, using defaults", "path", path)
		return store.Default(), nil
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

func buildApp(ctx context.Context, cfg *store.Config) (*app, error) {
	db, err := storage.NewDatabase(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	settings := storage.NewSettingsRepo(db)
	if err := settings.Seed(ctx, os.Getenv("NOTION_TOKEN"), os.Getenv("NOTION_DATABASE_ID")); err != nil {
		logger.Warn(ctx, "Could not seed settings from environment", "error", err)
	}
	counters := storage.NewCounterRepo(db)

	journal := tradelog.New(cfg.Journal.Dir)
	if err := journal.CompressOlder(cfg.Journal.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
	}

	stores := notionobs.WrapFactory(notion.Factory(notion.Config{
		BaseURL:   cfg.Notion.BaseURL,
		Version:   cfg.Notion.Version,
		RateLimit: cfg.Notion.RateLimit,
	}))

	opts := []syncer.Option{
		syncer.WithJournal(journal),
		syncer.WithPassLock(storage.NewPassLockRepo(db)),
	}
	if n := initializeNotifier(ctx, cfg); n != nil {
		opts = append(opts, syncer.WithNotifier(n))
	}
	orch := syncer.New(syncer.Config{
		Selectors:     cfg.Page.Selectors,
		PanelID:       cfg.Page.PanelID,
		PageSize:      cfg.Sync.PageSize,
		RemoteTimeout: cfg.Sync.RemoteTimeout,
		PassTimeout:   cfg.Sync.PassTimeout,
		LockPoll:      cfg.Sync.LockPoll,
	}, settings, counters, stores, opts...)

	source := initializeSource(cfg)
	return &app{
		cfg:      cfg,
		settings: settings,
		journal:  journal,
		source:   source,
		syncer:   orch,
		commands: commands.New(settings, stores, syncobs.Wrap(orch), source),
	}, nil
}

func initializeSource(cfg *store.Config) interfaces.DocumentSource {
	if cfg.Page.Source == store.SourceHTTP {
		return &page.HTTPSource{URL: cfg.Page.URL, Headers: cfg.Page.Headers, Timeout: cfg.Sync.RemoteTimeout}
	}
	return &page.FileSource{Path: cfg.Page.Path}
}

// initializeNotifier returns nil when Telegram is off or cannot connect.
func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	if !cfg.Telegram.Enabled {
		return nil
	}
	n, err := notify.NewTelegram(os.Getenv("TELEGRAM_BOT_TOKEN"), cfg.Telegram.ChatID, "")
	if err != nil {
		logger.Warn(ctx, "Telegram notifications disabled", "error", err)
		return nil
	}
	return n
}

func (a *app) summarizer() interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer(a.journal, filepath.Join(a.cfg.Journal.Dir, "eod")))
}

func (a *app) watcher() *page.Watcher {
	return page.NewWatcher(a.source, a.cfg.Page.PollInterval, a.cfg.Page.Selectors, a.cfg.Page.PanelID)
}
