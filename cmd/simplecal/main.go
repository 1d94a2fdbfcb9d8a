package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"simplecal/internal/calendar"
	"simplecal/internal/clock"
	"simplecal/internal/config"
	"simplecal/internal/ics"
	appLog "simplecal/internal/log"
	"simplecal/internal/store"
	"simplecal/internal/ui"
)

// flagConfig holds CLI flag values applied on top of the config file.
type flagConfig struct {
	configPath string
	dataPath   string
	exportICS  string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if lvl, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(lvl)
	}

	// CLI -data overrides the config file data path if provided.
	if flags.dataPath != "" {
		conf.DataFile = flags.dataPath
	}

	appLog.Info("simplecal starting",
		"version", "0.1.0",
		"config_path", flags.configPath,
		"data_file", conf.DataFile,
		"ics_file", conf.ICSFile,
		"log_level", conf.LogLevel,
	)

	mgr := calendar.New(clock.System{})
	if err := store.Load(conf.DataFile, mgr); err != nil {
		appLog.Error("failed to load events", err, "data_file", conf.DataFile)
		os.Exit(1)
	}

	// One-shot export mode: write the ICS file and exit without entering
	// the menu.
	if flags.exportICS != "" {
		if err := ics.Export(mgr, flags.exportICS); err != nil {
			appLog.Error("ics export failed", err, "path", flags.exportICS)
			os.Exit(1)
		}
		return
	}

	// SIGTERM lands here; Ctrl-C inside a prompt surfaces as an interrupt
	// through the UI and takes the ordinary save path below.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, exiting without saving", "signal", sig.String())
		os.Exit(1)
	}()

	if err := ui.New(mgr, clock.System{}, conf).Run(); err != nil {
		appLog.Error("ui failed", err)
		os.Exit(1)
	}

	if err := store.Save(conf.DataFile, mgr); err != nil {
		appLog.Error("failed to save events", err, "data_file", conf.DataFile)
		os.Exit(1)
	}
	appLog.Info("simplecal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "simplecal.yaml", "Path to config file")
	flag.StringVar(&cfg.dataPath, "data", "", "Path to event store (overrides config if set)")
	flag.StringVar(&cfg.exportICS, "export-ics", "", "Export the calendar to the given ICS path and exit")

	flag.Parse()

	return cfg
}
