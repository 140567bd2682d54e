package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/flipsignal/config"
	"github.com/alejandrodnm/flipsignal/internal/adapters/notify"
	"github.com/alejandrodnm/flipsignal/internal/adapters/offerfile"
	"github.com/alejandrodnm/flipsignal/internal/adapters/storage"
	"github.com/alejandrodnm/flipsignal/internal/adapters/wiki"
	"github.com/alejandrodnm/flipsignal/internal/application/engine"
	"github.com/alejandrodnm/flipsignal/internal/application/engine/advisor"
	"github.com/alejandrodnm/flipsignal/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	dryRun := flag.Bool("dry-run", false, "keep everything in memory, nothing is written to disk")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full signal table + price plan (default: compact 1-line)")
	explain := flag.Bool("explain", false, "print step-by-step calculation for top 3 signals")
	offersPath := flag.String("offers", "", "YAML file with open offers (overrides config)")
	deterministic := flag.Bool("deterministic", false, "no random baseline term in the score")
	history := flag.Duration("history", 0, "print stored signals seen in the last duration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *offersPath != "" {
		cfg.Offers.File = *offersPath
	}
	if *dryRun {
		cfg.Storage.DSN = ":memory:"
	}
	setupLogger(cfg.Log)

	scanCfg := cfg.ScanConfig()
	slog.Info("flipsignal starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"horizon_min", scanCfg.TimeHorizonMinutes,
		"risk", scanCfg.RiskTolerance.String(),
		"dry_run", *dryRun,
		"once", *once,
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table, *explain)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		printHistory(ctx, store, notifier, *history)
		return
	}

	client := wiki.NewClient(cfg.API.WikiBase, cfg.API.UserAgent)

	var indicators scanner.IndicatorSource = scanner.NewSimulatedIndicators()
	if *deterministic {
		indicators = scanner.SnapshotIndicators{}
	}
	s := scanner.New(scanner.Config{
		AnalysisWorkers: cfg.Scanner.AnalysisWorkers,
		CacheSize:       cfg.Scanner.CacheSize,
	}, client, client, indicators, engine.SystemClock{})

	if err := s.LoadCatalog(ctx); err != nil {
		slog.Warn("item catalog unavailable, using default names and buy limits", "err", err)
	}
	s.SetBuyLimits(cfg.Scanner.BuyLimits)

	adv := advisor.New(s, store, store, notifier, engine.SystemClock{}, advisor.Config{
		Scan:          scanCfg,
		Capital:       cfg.Pricing.Capital,
		TopN:          cfg.Pricing.TopN,
		SupportOffset: cfg.Pricing.SupportOffset,
		ResistOffset:  cfg.Pricing.ResistOffset,
	})

	if cfg.Offers.File != "" {
		if err := importOffers(ctx, adv, cfg.Offers.File); err != nil {
			slog.Error("failed to import offers", "err", err, "file", cfg.Offers.File)
			os.Exit(1)
		}
	}

	if *once {
		if _, err := adv.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := runScheduled(ctx, adv, cfg.ScanInterval()); err != nil {
		slog.Error("scheduler exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("flipsignal stopped cleanly")
}

func importOffers(ctx context.Context, adv *advisor.Engine, path string) error {
	offers, err := offerfile.Load(path, time.Now().UTC())
	if err != nil {
		return err
	}
	return adv.ImportOffers(ctx, offers)
}

func printHistory(ctx context.Context, store *storage.SQLiteStorage, notifier *notify.Console, window time.Duration) {
	to := time.Now().UTC()
	signals, err := store.GetHistory(ctx, to.Add(-window), to)
	if err != nil {
		slog.Error("failed to read history", "err", err)
		os.Exit(1)
	}
	cycles, err := store.CycleCount(ctx)
	if err != nil {
		slog.Warn("failed to count cycles", "err", err)
	}
	notifier.PrintHistory(signals, cycles)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
