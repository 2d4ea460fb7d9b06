package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sessioncal/internal/buildinfo"
	"sessioncal/internal/calendar"
	"sessioncal/internal/capture"
	"sessioncal/internal/config"
	"sessioncal/internal/ics"
	appLog "sessioncal/internal/log"
	"sessioncal/internal/model"
	"sessioncal/internal/schedule"
	"sessioncal/internal/seed"
	"sessioncal/internal/store"
	"sessioncal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	info := buildinfo.Get()
	appLog.Info("sessioncal starting", "version", info.Version, "revision", info.Revision, "build_date", info.BuildDate, "go", info.GoVersion)

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.debug {
		conf.LogLevel = "debug"
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"seed_file", conf.SeedFile,
		"once", flags.once,
	)

	sessions, err := loadSeed(conf)
	if err != nil {
		appLog.Error("failed to load seed sessions", err, "seed_file", conf.SeedFile)
		os.Exit(1)
	}

	// The one session store of the process; everything below receives it.
	st := store.New(sessions)
	appLog.Info("session store ready", "sessions", st.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importer := ics.NewImporter(ics.NewFetcher(conf.CacheDir), icsSources(conf), st)

	if flags.once {
		if err := runOnce(ctx, conf, importer); err != nil {
			appLog.Error("single run failed", err)
			os.Exit(1)
		}
		return
	}

	calOpts := []calendar.Option{
		calendar.WithWeekStart(calendar.ParseWeekStart(conf.WeekStart)),
		calendar.WithScale(calendar.Scale{
			Baseline:     conf.Layout.Baseline,
			OffsetFactor: conf.Layout.OffsetFactor,
			ExtentFactor: conf.Layout.ExtentFactor,
		}),
	}
	cal := calendar.NewController(st, time.Now(), calOpts...)
	defer cal.Close()

	sched := schedule.New(ctx)
	if err := sched.Add("ics-refresh", conf.RefreshCron, func(ctx context.Context) error {
		_, err := importer.Refresh(ctx)
		return err
	}); err != nil {
		appLog.Error("invalid refresh schedule", err)
		os.Exit(1)
	}
	if err := sched.Add("capture", conf.Capture.Cron, func(ctx context.Context) error {
		return capture.WeekPNG(ctx, captureOptions(conf))
	}); err != nil {
		appLog.Error("invalid capture schedule", err)
		os.Exit(1)
	}

	// Initial import so subscriptions show up before the first cron tick.
	go func() {
		if _, err := importer.Refresh(ctx); err != nil {
			appLog.Error("initial ics import failed", err)
		}
	}()

	sched.Start()

	srv := web.NewServer(conf, st, cal, calOpts...)
	if err := srv.Serve(ctx); err != nil {
		appLog.Error("http server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	appLog.Info("sessioncal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/sessioncal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Import ICS subscriptions once, capture a preview if configured, and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func loadSeed(conf *config.Config) ([]model.Session, error) {
	if conf.SeedFile == "" {
		return seed.Default(), nil
	}
	return seed.Load(conf.SeedFile)
}

func icsSources(conf *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, c := range conf.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}
	return sources
}

func captureOptions(conf *config.Config) capture.Options {
	url := conf.Capture.URL
	if url == "" {
		url = "http://" + conf.Listen + "/"
	}
	return capture.Options{
		URL:        url,
		OutputPath: conf.Capture.Output,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
	}
}

// runOnce imports subscriptions and, when a capture URL is configured,
// takes one preview. Without a running server the default URL would have
// nothing to show, so capture needs an explicit capture.url here.
func runOnce(ctx context.Context, conf *config.Config, importer *ics.Importer) error {
	n, importErr := importer.Refresh(ctx)
	appLog.Info("single run import done", "added", n)

	var captureErr error
	if conf.Capture.URL != "" {
		captureErr = capture.WeekPNG(ctx, captureOptions(conf))
	}
	return errors.Join(importErr, captureErr)
}
