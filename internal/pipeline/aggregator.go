package pipeline

import (
	"context"

	"github.com/couchcryptid/outbreak-report/internal/domain"
)

// ReportAggregator implements Aggregator using the domain report functions.
type ReportAggregator struct {
	opts domain.Options
}

// NewAggregator creates a ReportAggregator with the given section sizes,
// geo options, and clock.
func NewAggregator(opts domain.Options) *ReportAggregator {
	return &ReportAggregator{opts: opts}
}

func (a *ReportAggregator) Aggregate(ctx context.Context, source string, ds *domain.Dataset) *domain.Report {
	return domain.BuildReport(ctx, source, ds, a.opts)
}
