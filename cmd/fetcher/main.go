// Command fetcher downloads TSETMC market-watch spreadsheets for a range of
// business days into the stage directory.
//
// Usage:
//
//	fetcher [-start YYYY-MM-DD] [-stage DIR] END_DATE
//
// END_DATE is a Jalali date; when -start is omitted only END_DATE is fetched.
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
	"tsecli/internal/fetch"
	"tsecli/internal/infrastructure"
	"tsecli/internal/jalali"
)

func main() {
	startStr := flag.String("start", "", "start date YYYY-MM-DD (defaults to the end date)")
	stageDir := flag.String("stage", "", "stage directory override")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fetcher [-start YYYY-MM-DD] [-stage DIR] END_DATE")
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
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.Paths.LogPath("fetcher.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	end, err := jalali.Parse(flag.Arg(0))
	if err != nil {
		logger.Error("invalid end date", slog.String("error", err.Error()))
		os.Exit(1)
	}
	start := end
	if *startStr != "" {
		if start, err = jalali.Parse(*startStr); err != nil {
			logger.Error("invalid start date", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("fetch starting",
		slog.String("start", start.String()),
		slog.String("end", end.String()),
		slog.String("stage_dir", cfg.Paths.StageDir))

	fetcher := fetch.New(cfg.Fetch, logger)
	summary, err := fetcher.FetchRange(ctx, start, end, cfg.Paths.StageDir)
	if err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Per-date failures leave their dates for a resumed run; the run itself
	// still completed.
	if len(summary.Failures) > 0 {
		logger.Warn("some dates were not fetched",
			slog.Int("failed", len(summary.Failures)))
	}
}
