package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"terragen/internal/logger"
	"terragen/internal/util"
	"terragen/pkg/config"
	"terragen/pkg/engine"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	preset := flag.String("preset", "", "Name of a setting preset to apply")
	outDir := flag.String("out", "", "Export directory (overrides export.output_dir)")
	serve := flag.Bool("serve", false, "Run the preview server instead of exporting once")
	addr := flag.String("addr", "", "Preview server address (overrides server.address)")
	logLevel := flag.String("log-level", "", "Log level (overrides logging.level)")
	flag.Parse()

	cfg, cfgErr := config.LoadConfig(*configPath)
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *outDir != "" {
		cfg.Export.OutputDir = *outDir
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}

	lg := logger.NewLogger(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		multi, err := logger.NewMultiLogger(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		lg = multi
	}
	defer lg.Close()

	if cfgErr != nil {
		lg.Warnf("%v", cfgErr)
	}
	lg.Info("Starting terrain generator...")

	gen, err := engine.NewEngine(cfg, lg)
	if err != nil {
		lg.Fatalf("Failed to initialize terrain engine: %v", err)
	}

	name := *preset
	if name == "" && cfg.Presets.Default != "" && util.FileExists(config.PresetPath(cfg.Presets.Dir, cfg.Presets.Default)) {
		name = cfg.Presets.Default
	}
	if name != "" {
		if err := gen.LoadPreset(name); err != nil {
			lg.Fatalf("Failed to apply preset: %v", err)
		}
	}

	if *serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := gen.Serve(ctx, cfg.Server.Address); err != nil {
			lg.Fatalf("Preview server failed: %v", err)
		}
		return
	}

	res, err := gen.Export()
	if err != nil {
		lg.Fatalf("Export failed: %v", err)
	}
	lg.Infof("World written to %s", res.WorldFile)
}
