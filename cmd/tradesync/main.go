package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notion-trade-sync/internal/commands"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/trace"
	"notion-trade-sync/internal/types"
)

var version = "dev"

const usage = `usage: tradesync [-config config.yaml] <command> [flags]

commands:
  sync              run one pass over the page now
  watch             observe the page and sync after changes
  test-connection   check the Notion token and database
  save-settings     validate and store credentials and toggles
  summary           write the daily CSV summary (-date YYYY-MM-DD)
  version           print the version
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]
	if cmd == "version" {
		fmt.Println(version)
		return
	}

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}
	a, err := buildApp(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to start", err)
		os.Exit(1)
	}

	var ok bool
	switch cmd {
	case "sync":
		res := a.commands.ManualSync(ctx)
		printJSON(res)
		ok = res.Success
	case "test-connection":
		res := a.commands.TestConnection(ctx)
		printJSON(res)
		ok = res.Success
	case "save-settings":
		ok = runSaveSettings(ctx, a, args)
	case "summary":
		ok = runSummary(a, args)
	case "watch":
		logger.Info(ctx, "Watching page", "source", cfg.Page.Source, "debounce", cfg.Sync.Debounce)
		err := a.commands.Watch(ctx, a.watcher(), commands.WatchConfig{
			Debounce:     cfg.Sync.Debounce,
			SettingsPoll: cfg.Sync.SettingsPoll,
		})
		a.syncer.ResetSession()
		if _, serr := a.summarizer().SummarizeToday(); serr != nil {
			logger.Warn(ctx, "Daily summary on shutdown failed", "error", serr)
		}
		ok = err == nil
	default:
		flag.Usage()
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

func runSaveSettings(ctx context.Context, a *app, args []string) bool {
	current, err := a.settings.Load(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load settings", err)
		return false
	}

	fs := flag.NewFlagSet("save-settings", flag.ExitOnError)
	token := fs.String("token", current.Token, "Notion integration token")
	dbID := fs.String("database", current.StoreID, "Notion database id")
	autoSync := fs.Bool("auto-sync", current.AutoSyncEnabled, "sync automatically after page changes")
	realtime := fs.Bool("realtime", current.RealTimeMonitoringEnabled, "observe the page for changes")
	fs.Parse(args)

	res := a.commands.SaveSettings(ctx, types.Settings{
		Token:                     *token,
		StoreID:                   *dbID,
		AutoSyncEnabled:           *autoSync,
		RealTimeMonitoringEnabled: *realtime,
	})
	printJSON(res)
	return res.Success
}

func runSummary(a *app, args []string) bool {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	date := fs.String("date", "", "day to summarize, YYYY-MM-DD (default today)")
	fs.Parse(args)

	day := time.Now()
	if *date != "" {
		t, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date: %v\n", err)
			return false
		}
		day = t
	}
	path, err := a.summarizer().SummarizeDay(day)
	if err != nil {
		return false
	}
	if path == "" {
		fmt.Println("no synced trades")
	} else {
		fmt.Println(path)
	}
	return true
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
