package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/floodwatch/glofas-trigger/internal/adapter/http"
	kafkaadapter "github.com/floodwatch/glofas-trigger/internal/adapter/kafka"
	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/extract"
	"github.com/floodwatch/glofas-trigger/internal/fetch"
	"github.com/floodwatch/glofas-trigger/internal/observability"
	"github.com/floodwatch/glofas-trigger/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	registry, err := config.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		logger.Error("failed to load country registry", "error", err)
		os.Exit(1)
	}
	settings, err := registry.Country(cfg.CountryCode)
	if err != nil {
		logger.Error("country not configured", "error", err)
		os.Exit(1)
	}
	policy := settings.Policy(cfg.CountryCode)

	var fetcher pipeline.Fetcher
	var extractor pipeline.Extractor
	switch policy.Extraction {
	case config.ExtractionReport:
		client := fetch.NewClient(cfg.FTPHost, cfg.FTPUser, cfg.FTPPassword, cfg.FTPTimeout, logger)
		source := fetch.NewArchiveSource(client, settings, cfg.InputDir, logger)
		retrier := fetch.NewRetrier(source, cfg.FetchDeadline, cfg.FetchRetryInterval, nil, logger)
		retrier.OnRetry = metrics.FetchRetries.Inc
		fetcher = retrier
		extractor = extract.NewReportExtractor(settings, cfg.InputDir, logger)
	case config.ExtractionGrid:
		client := fetch.NewClient(cfg.FTPHost, cfg.FTPUser, cfg.FTPPassword, cfg.FTPTimeout, logger)
		source := fetch.NewGridSource(client, settings, cfg.GridInputDir, logger)
		retrier := fetch.NewRetrier(source, cfg.FetchDeadline, cfg.FetchRetryInterval, nil, logger)
		retrier.OnRetry = metrics.FetchRetries.Inc
		fetcher = retrier
		extractor = extract.NewGridExtractor(settings, cfg.GridInputDir, logger)
	case config.ExtractionMock:
		// Mock runs never touch the network.
		extractor = extract.NewMockExtractor(settings, logger)
		logger.Info("mock extraction enabled", "mock_trigger", settings.IfMockTrigger)
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if len(cfg.KafkaBrokers) > 0 {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	runner := pipeline.New(cfg, settings, policy, fetcher, extractor, publisher, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := runner.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline run failed", "error", runErr)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		cancel()
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("done")
}
