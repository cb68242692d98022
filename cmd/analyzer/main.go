package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pagepulse/internal/adapters/cache"
	"pagepulse/internal/adapters/report"
	"pagepulse/internal/adapters/storage"
	"pagepulse/internal/analysis"
	"pagepulse/internal/config"
	"pagepulse/internal/usecases"
	"pagepulse/pkg/log"
	"pagepulse/pkg/log/transporters"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", config.DefaultPath, "path to the YAML config")
		dataDir    = flag.String("data_dir", "", "scraped datasets directory (overrides config)")
		resultsDir = flag.String("results_dir", "", "output directory (overrides config)")
	)
	flag.Parse()

	boot := transporters.NewLogger("console", log.Info)
	log.SetDefault(boot)

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal("invalid config", "error", err)
		boot.Close()
		return 1
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *resultsDir != "" {
		cfg.ResultsDir = *resultsDir
	}

	logger := transporters.NewLogger(cfg.Log.Format, cfg.LogLevel()).Named("analyzer")
	log.SetDefault(logger)
	boot.Close()
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := log.NewRun(ctx)

	writer, err := report.NewWriter(cfg.ResultsDir)
	if err != nil {
		logger.Fatal("results dir unavailable", "error", err)
		return 1
	}

	scores := cache.NewScoreCache()
	uc := usecases.NewAnalyzeDatasetsUseCase(
		storage.NewFileStore(cfg.DataDir),
		analysis.NewScorer(scores),
		writer,
		usecases.AnalyzeOptions{
			Flatten: analysis.FlattenOptions{
				Policy:                cfg.Policy(),
				OperatorNames:         cfg.Analysis.OperatorNames,
				KeepRepliesOfExcluded: cfg.Analysis.KeepRepliesOfExcluded,
			},
			TopComments:   cfg.Analysis.TopComments,
			TopCommenters: cfg.Analysis.TopCommenters,
			Topics: analysis.TopicModel{
				Topics:     cfg.Analysis.Topics,
				TopWords:   cfg.Analysis.TopicWords,
				Iterations: cfg.Analysis.TopicIterations,
				Seed:       *cfg.Analysis.TopicSeed,
			},
			LexicalTopK: cfg.Analysis.LexicalTopK,
		},
	)

	logger.InfoCtx(ctx, "analysis started", "run_id", runID, "data_dir", cfg.DataDir, "results_dir", cfg.ResultsDir)

	summary, err := uc.Execute(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "analysis failed", "error", err, "files_written", len(summary.Files))
		return 1
	}

	hits, misses := scores.Stats()
	logger.InfoCtx(ctx, "analysis finished",
		"datasets", len(summary.Datasets),
		"files", len(summary.Files),
		"score_cache_hits", hits,
		"score_cache_misses", misses,
	)
	return 0
}
