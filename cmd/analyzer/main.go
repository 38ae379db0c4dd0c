// Command analyzer aggregates the data-lake history into leaderboard views
// and renders them as a static HTML report.
//
// Usage:
//
//	analyzer [-lake DIR] [-top N] [-out FILE] [-open=false]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tsecli/internal/analyze"
	"tsecli/internal/config"
	"tsecli/internal/infrastructure"
	"tsecli/internal/report"
)

func main() {
	lakeDir := flag.String("lake", "", "data lake directory override")
	topN := flag.Int("top", 10, "number of symbols per leaderboard")
	outPath := flag.String("out", "", "report output path override")
	openViewer := flag.Bool("open", true, "open the report in the platform viewer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *lakeDir != "" {
		cfg.Paths.LakeDir = *lakeDir
	}
	if *outPath != "" {
		cfg.Paths.ReportPath = *outPath
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.Paths.LogPath("analyzer.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("analysis starting",
		slog.String("lake_dir", cfg.Paths.LakeDir),
		slog.Int("top_n", *topN))

	ds, err := analyze.LoadLake(cfg.Paths.LakeDir)
	if err != nil {
		logger.Error("failed to load data lake", slog.String("error", err.Error()))
		os.Exit(1)
	}

	analysis, err := analyze.NewAnalyzer(logger).Analyze(ds, *topN)
	if err != nil {
		logger.Error("analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var opener report.Opener
	if *openViewer {
		opener = report.PlatformOpener{}
	}
	writer := report.NewWriter(logger, opener)
	if err := writer.Write(analysis, cfg.Paths.ReportPath); err != nil {
		logger.Error("failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("analysis complete, check the report for visual results",
		slog.String("report", cfg.Paths.ReportPath))
}
