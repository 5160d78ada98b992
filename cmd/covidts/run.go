package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-timeseries-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/covid-timeseries-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-timeseries-etl/internal/adapter/web"
	"github.com/couchcryptid/covid-timeseries-etl/internal/config"
	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
	"github.com/couchcryptid/covid-timeseries-etl/internal/observability"
	"github.com/couchcryptid/covid-timeseries-etl/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch releases, reconcile the series and write the artifact",
		Long: `Walks the media release listing, extracts the daily figures from every
COVID-19 update, merges them with the manual table, fills the gaps and
writes OUTPUT_PATH. Configuration is read from the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := observability.NewLogger(cfg)
			return runPipeline(cmd.Context(), cfg, logger, observability.NewMetrics())
		},
	}
}

func runPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	table, err := loadPatterns(cfg.PatternsFile)
	if err != nil {
		return err
	}

	client := web.NewClient(cfg.HTTPTimeout, logger)
	pages := web.NewCachedFetcher(client, cfg.CacheDir, cfg.Offline, metrics)
	src := web.NewSource(client, pages, web.OptionsFromConfig(cfg), logger, metrics)

	loaders := []pipeline.ArtifactLoader{file.NewWriter(cfg.OutputPath, logger)}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer closeWithTimeout(writer, cfg.ShutdownTimeout, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(src, pipeline.NewTransformer(table, logger, metrics), pipeline.DefaultReference(),
		loaders, clockwork.NewRealClock(), logger, metrics)

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	_, runErr := p.Run(runCtx)
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("metrics textfile not written", "path", cfg.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		return runErr
	}
	return nil
}

// loadPatterns returns the embedded pattern table, or the one at path when set.
func loadPatterns(path string) (*domain.PatternTable, error) {
	if path == "" {
		return domain.DefaultPatterns()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open patterns: %w", err)
	}
	defer f.Close()
	table, err := domain.LoadPatterns(f)
	if err != nil {
		return nil, fmt.Errorf("patterns %s: %w", path, err)
	}
	return table, nil
}

// closeWithTimeout closes c, giving up after timeout so a stuck broker cannot
// hold the process open.
func closeWithTimeout(c io.Closer, timeout time.Duration, logger *slog.Logger) {
	done := make(chan error, 1)
	go func() { done <- c.Close() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("close error", "error", err)
		}
	case <-time.After(timeout):
		logger.Error("close timed out", "timeout", timeout)
	}
}
