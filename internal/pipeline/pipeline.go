package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/outbreak-report/internal/domain"
	"github.com/couchcryptid/outbreak-report/internal/observability"
)

// Loader reads the outbreak dataset from its source.
type Loader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
	Source() string
}

// Aggregator derives the report from a loaded dataset.
type Aggregator interface {
	Aggregate(ctx context.Context, source string, ds *domain.Dataset) *domain.Report
}

// Sink hands a finished report to a presentation layer.
type Sink interface {
	Name() string
	Publish(ctx context.Context, report *domain.Report) error
}

// Pipeline runs load, aggregate, and publish once.
type Pipeline struct {
	loader     Loader
	aggregator Aggregator
	sinks      []Sink
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(l Loader, a Aggregator, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:     l,
		aggregator: a,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes the pipeline. A load failure is returned as a
// *domain.DataLoadError before any sink runs. Every sink is attempted; their
// failures are joined. The report is returned whenever it was built.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	p.metrics.RunSuccess.Set(0)
	source := p.loader.Source()
	p.logger.Info("pipeline started", "source", source, "sinks", len(p.sinks))

	start := time.Now()
	ds, err := p.loader.Load(ctx)
	if err != nil {
		var loadErr *domain.DataLoadError
		if !errors.As(err, &loadErr) {
			err = &domain.DataLoadError{Path: source, Err: err}
		}
		return nil, err
	}
	p.observe("load", start)
	p.metrics.RecordsLoaded.Add(float64(ds.Len()))

	start = time.Now()
	report := p.aggregator.Aggregate(ctx, source, ds)
	p.observe("aggregate", start)
	p.recordReport(report)

	start = time.Now()
	if err := p.publish(ctx, report); err != nil {
		return report, err
	}
	p.observe("publish", start)

	p.metrics.RunSuccess.Set(1)
	p.logger.Info("pipeline finished",
		"source", source,
		"records", report.RecordCount,
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// recordReport logs and counts the report's warnings and geo output.
func (p *Pipeline) recordReport(report *domain.Report) {
	for _, w := range report.Warnings {
		p.logger.Warn("report section degraded",
			"kind", w.Kind,
			"section", w.Section,
			"detail", w.Message,
		)
		p.metrics.Warnings.WithLabelValues(string(w.Kind)).Inc()
	}
	if report.Geo != nil {
		p.metrics.GeoPoints.WithLabelValues(string(report.Geo.Policy)).Add(float64(len(report.Geo.Points)))
		p.logger.Info("geo layer resolved",
			"policy", report.Geo.Policy,
			"points", len(report.Geo.Points),
			"excluded", report.Geo.Excluded,
		)
	}
}

func (p *Pipeline) publish(ctx context.Context, report *domain.Report) error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Publish(ctx, report); err != nil {
			p.logger.Error("publish failed", "sink", s.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
