package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weekendplan/internal/autosave"
	"weekendplan/internal/capture"
	"weekendplan/internal/catalog"
	"weekendplan/internal/config"
	"weekendplan/internal/export"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/planstore"
	"weekendplan/internal/storage"
	"weekendplan/internal/web"
)

// flagConfig holds CLI flag values before config loading.
type flagConfig struct {
	configPath string
	listen     string
	logLevel   string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the config file when set.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	level, ok := appLog.ParseLevel(conf.LogLevel)
	if !ok {
		appLog.Warn("unknown log level, using info", "log_level", conf.LogLevel)
	}
	appLog.SetLevel(level)

	appLog.Info("weekendplan starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"data_path", conf.DataPath,
		"timezone", conf.Timezone,
		"default_theme", conf.DefaultTheme,
		"autosave", conf.Autosave,
		"capture", conf.Capture.Enabled,
		"once", flags.once,
	)

	cat, err := catalog.Default()
	if err != nil {
		appLog.Error("failed to load activity catalog", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := planstore.New(planstore.Options{
		Catalog:          cat,
		Persister:        storage.NewFileStore(conf.DataPath),
		DefaultTheme:     conf.DefaultTheme,
		SeedStarter:      conf.SeedStarterActivities,
		DefaultStartTime: conf.DefaultStartTime,
	})
	if err := store.Restore(ctx); err != nil {
		appLog.Error("failed to restore saved plans", err, "data_path", conf.DataPath)
		os.Exit(1)
	}
	unsubscribe := store.Subscribe(func(ev planstore.Event) {
		appLog.Debug("plan state changed", "op", string(ev.Op), "plan_id", ev.PlanID)
	})
	defer unsubscribe()

	if flags.once {
		printSummaries(store, cat)
		return
	}

	saver, err := autosave.New(conf.Autosave, store, conf.Location())
	if err != nil {
		appLog.Error("failed to create autosave scheduler", err, "spec", conf.Autosave)
		os.Exit(1)
	}
	saver.Start()

	opts := web.Options{Config: conf, Store: store, Catalog: cat}
	if conf.Capture.Enabled {
		opts.Capturer = capture.Chromium{
			Width:   conf.Capture.Width,
			Height:  conf.Capture.Height,
			Timeout: conf.Capture.Timeout(),
		}
	}
	srv := web.NewServer(opts)

	runErr := srv.Run(ctx)
	if runErr != nil {
		appLog.Error("HTTP server failed", runErr)
	}

	// Final flush happens inside Stop.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := saver.Stop(stopCtx); err != nil {
		appLog.Error("final save failed", err, "data_path", conf.DataPath)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
	appLog.Info("weekendplan exiting")
}

// printSummaries writes a text summary of every saved plan to stdout.
func printSummaries(store *planstore.Store, cat *catalog.Catalog) {
	plans := store.SavedPlans()
	if len(plans) == 0 {
		fmt.Println("No saved plans.")
	}
	for i, p := range plans {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(export.Summary(p, cat))
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/weekendplan/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print a summary of every saved plan and exit")

	flag.Parse()

	return cfg
}
