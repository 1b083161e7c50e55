// Package pipeline orchestrates one trigger run: acquire raw forecasts,
// extract ensemble records, resolve per-station trigger decisions, persist
// the output artifacts. The flow is strictly linear; a run either fully
// succeeds or fully fails.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
	"github.com/floodwatch/glofas-trigger/internal/fetch"
	"github.com/floodwatch/glofas-trigger/internal/observability"
)

// Fetcher places the current cycle's raw forecast files into the input
// directories, retrying until its deadline.
type Fetcher interface {
	Fetch(ctx context.Context) error
}

// Extractor parses raw forecast artifacts into ensemble records.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.ForecastRecord, error)
}

// Publisher announces the run's trigger decisions to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, reports []domain.StationTriggerReport) error
}

// Runner executes one pipeline run for one country and lead time.
type Runner struct {
	cfg       *config.Config
	settings  *config.CountrySettings
	policy    config.Policy
	fetcher   Fetcher   // nil in mock mode
	extractor Extractor
	publisher Publisher // nil when publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Runner with the given stages and observability.
func New(cfg *config.Config, settings *config.CountrySettings, policy config.Policy,
	fetcher Fetcher, extractor Extractor, publisher Publisher,
	logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		cfg:       cfg,
		settings:  settings,
		policy:    policy,
		fetcher:   fetcher,
		extractor: extractor,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes the pipeline once. A fetch failure is fatal: without a fresh
// forecast there is no trigger decision to make.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	r.logger.Info("run started", "strategy", string(r.policy.Extraction))

	if r.policy.Extraction != config.ExtractionMock {
		if err := fetch.CleanDirs(r.cfg.InputDir, r.cfg.GridInputDir); err != nil {
			return err
		}
		fetchStart := time.Now()
		if err := r.fetcher.Fetch(ctx); err != nil {
			return fmt.Errorf("acquire forecast: %w", err)
		}
		r.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	}

	records, err := r.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract forecast: %w", err)
	}
	r.metrics.RecordsExtracted.Add(float64(len(records)))

	result, err := r.resolveTriggers(records)
	if err != nil {
		return fmt.Errorf("resolve triggers: %w", err)
	}

	if err := r.persist(result); err != nil {
		return fmt.Errorf("persist output: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, result.reports); err != nil {
			return fmt.Errorf("publish triggers: %w", err)
		}
	}

	r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("run finished",
		"stations", len(result.stations),
		"duration", time.Since(start).String(),
	)
	return nil
}
