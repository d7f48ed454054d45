package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/outbreak-report/internal/adapter/csvfile"
	"github.com/couchcryptid/outbreak-report/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/outbreak-report/internal/adapter/kafka"
	"github.com/couchcryptid/outbreak-report/internal/adapter/mapbox"
	"github.com/couchcryptid/outbreak-report/internal/config"
	"github.com/couchcryptid/outbreak-report/internal/domain"
	"github.com/couchcryptid/outbreak-report/internal/observability"
	"github.com/couchcryptid/outbreak-report/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const pushTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	opts := domain.DefaultOptions()
	opts.TopFoods = cfg.TopFoods
	opts.TopFatal = cfg.TopFatal
	opts.PreviewRows = cfg.PreviewRows
	opts.Geo.Seed = cfg.GeoSeed

	// State geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		opts.Geo.Locator = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxMaxAttempts, logger, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "max_attempts", cfg.MapboxMaxAttempts, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	sinks := []pipeline.Sink{jsonfile.NewWriter(cfg.OutputPath, logger)}
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	loader := csvfile.NewLoader(cfg.DataPath, logger)
	p := pipeline.New(loader, pipeline.NewAggregator(opts), sinks, logger, metrics)

	report, runErr := p.Run(ctx)
	if runErr != nil {
		var loadErr *domain.DataLoadError
		if errors.As(runErr, &loadErr) {
			logger.Error("dataset could not be loaded", "path", loadErr.Path, "error", loadErr.Err)
		} else {
			logger.Error("pipeline error", "error", runErr)
		}
	} else if unavailable := report.Unavailable(); len(unavailable) > 0 {
		logger.Info("report published with unavailable sections", "sections", unavailable)
	}

	if cfg.PushgatewayURL != "" {
		pushCtx, pushCancel := context.WithTimeout(context.Background(), pushTimeout)
		defer pushCancel()
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, loader.Source(), metrics); err != nil {
			logger.Error("metrics push failed", "gateway", cfg.PushgatewayURL, "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
