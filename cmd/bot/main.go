package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"FuelSentinel/internal/bot"
	"FuelSentinel/internal/collector"
	"FuelSentinel/internal/config"
	"FuelSentinel/internal/extractor"
	"FuelSentinel/internal/imagehost"
	"FuelSentinel/internal/notifier"
	"FuelSentinel/internal/recorder"
	"FuelSentinel/internal/scheduler"
	"FuelSentinel/internal/server"
	"FuelSentinel/internal/subscriber"
)

func main() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	cfgPath := flag.StringP("config", "c", defaultCfg, "path to the YAML config file")
	mock := flag.Bool("mock", false, "serve a built-in sample page instead of fetching CPC")
	runOnStart := flag.Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "push to subscribers once at startup")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}
	log.Info("FuelSentinel starting...")

	// Init extractor and collector
	extraLabels, _ := cfg.ExtraLabels()
	labels, err := extractor.NewLabels(extraLabels)
	if err != nil {
		log.Fatalf("build label table: %v", err)
	}
	var fetcher collector.Fetcher
	if *mock {
		fetcher = &collector.MockFetcher{Page: collector.MockPage}
	} else {
		fetcher = collector.NewCPCFetcher(cfg.Source.HistoryURL, cfg.Source.UserAgent, cfg.Proxy)
	}
	log.WithField("fetcher", fetcher.Name()).Info("data source ready")
	col := collector.NewCollector(fetcher, extractor.New(cfg.Source.Candidates, labels))

	// Init LINE messenger
	messenger, err := notifier.NewLINEMessenger(cfg.LINE.ChannelAccessToken, "", cfg.Proxy)
	if err != nil {
		log.Fatalf("init line messenger: %v", err)
	}

	// Init subscriber store
	var subs subscriber.Store
	switch cfg.Subscribers.Backend {
	case config.BackendFile:
		fs, err := subscriber.NewFileStore(cfg.Subscribers.File)
		if err != nil {
			log.Fatalf("open subscriber file: %v", err)
		}
		subs = fs
	default:
		ss, err := subscriber.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("open subscriber database: %v", err)
		}
		if _, err := ss.ImportLegacy(cfg.Subscribers.LegacyFile); err != nil {
			log.WithError(err).Warn("legacy subscriber import failed")
		}
		subs = ss
	}
	defer subs.Close()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	b := bot.New(col, messenger, subs)
	b.Recorder = rec
	b.HistoryRows = cfg.HistoryRows
	b.IsAdmin = cfg.IsAdmin
	if cfg.ImageKit.PrivateKey != "" {
		b.Uploader = imagehost.NewImageKit(cfg.ImageKit.PrivateKey, cfg.ImageKit.Folder, cfg.Proxy)
	} else {
		log.Warn("imagekit not configured, chart replies disabled")
	}
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		alerter, err := notifier.NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, "", cfg.Proxy)
		if err != nil {
			log.WithError(err).Warn("init telegram alerter failed, alerts disabled")
		} else {
			b.Alerter = notifier.RetryAlerter{Alerter: alerter, MaxRetries: 2}
		}
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	loc, _ := time.LoadLocation(cfg.Schedule.Timezone)
	sched := scheduler.NewScheduler(ctx, b, loc)
	if err := sched.RegisterAll(cfg.Schedule.PushCron, cfg.Schedule.RecordCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if *runOnStart {
		log.Info("run-on-start enabled, pushing now")
		go sched.RunPushNow()
	}

	// Start HTTP server
	srv := server.New(b, cfg.LINE.ChannelSecret, cfg.Server.CronSecret)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	log.Info("FuelSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("http server failed")
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	log.Info("FuelSentinel stopped")
}
