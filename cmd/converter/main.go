// Command converter normalizes staged market-watch spreadsheets into CSV
// tables in the data lake.
//
// Usage:
//
//	converter [-stage DIR] [-lake DIR] [-delete yes|no]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tsecli/internal/config"
	"tsecli/internal/convert"
	"tsecli/internal/infrastructure"
)

func main() {
	stageDir := flag.String("stage", "", "stage directory override")
	lakeDir := flag.String("lake", "", "data lake directory override")
	deleteSource := flag.String("delete", "no", "delete staged spreadsheets after conversion (yes|no)")
	flag.Parse()

	if *deleteSource != "yes" && *deleteSource != "no" {
		fmt.Fprintln(os.Stderr, "usage: converter [-stage DIR] [-lake DIR] [-delete yes|no]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *stageDir != "" {
		cfg.Paths.StageDir = *stageDir
	}
	if *lakeDir != "" {
		cfg.Paths.LakeDir = *lakeDir
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.Paths.LogPath("converter.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("conversion starting",
		slog.String("stage_dir", cfg.Paths.StageDir),
		slog.String("lake_dir", cfg.Paths.LakeDir),
		slog.Bool("delete_source", *deleteSource == "yes"))

	converter := convert.New(logger)
	if _, err := converter.ConvertAll(ctx, cfg.Paths.StageDir, cfg.Paths.LakeDir, *deleteSource == "yes"); err != nil {
		logger.Error("conversion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
