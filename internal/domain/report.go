package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Options controls report construction.
type Options struct {
	TopFoods    int // K for the top foods section
	TopFatal    int // K for the most fatal section
	PreviewRows int // leading records copied into the report
	Geo         GeoOptions

	// Clock stamps GeneratedAt. Nil uses the real clock.
	Clock clockwork.Clock
}

// DefaultOptions returns the section sizes used by the dashboard.
func DefaultOptions() Options {
	return Options{
		TopFoods:    5,
		TopFatal:    5,
		PreviewRows: 5,
	}
}

// Report is the read-only result handed to presentation sinks. A nil
// section slice means the section was unavailable; see Warnings.
type Report struct {
	Source      string           `json:"source"`
	GeneratedAt time.Time        `json:"generated_at"`
	RecordCount int              `json:"record_count"`
	Columns     []string         `json:"columns"`
	Preview     []OutbreakRecord `json:"preview"`

	YearlyCounts []YearCount            `json:"yearly_counts"`
	TopFoods     []FoodHospitalizations `json:"top_foods_by_hospitalizations"`
	MostFatal    []FatalRecord          `json:"most_fatal_records"`
	Totals       Totals                 `json:"totals"`
	Geo          *GeoLayer              `json:"geo"`

	Warnings []Warning `json:"warnings"`
}

// BuildReport runs every computation over ds. Computations whose inputs are
// missing are skipped and recorded as warnings; none of them is fatal.
func BuildReport(ctx context.Context, source string, ds *Dataset, opts Options) *Report {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	report := &Report{
		Source:      source,
		GeneratedAt: clock.Now().UTC(),
		RecordCount: ds.Len(),
		Columns:     ds.Columns(),
		Preview:     truncate(ds.Records(), opts.PreviewRows),
		Warnings:    []Warning{},
	}

	report.YearlyCounts = YearlyTrend(ds)

	var err error
	if report.TopFoods, err = TopFoodsByHospitalizations(ds, opts.TopFoods); err != nil {
		report.Warnings = append(report.Warnings, warningFromError(SectionTopFoods, err))
	}
	if report.MostFatal, err = MostFatalRecords(ds, opts.TopFatal); err != nil {
		report.Warnings = append(report.Warnings, warningFromError(SectionMostFatal, err))
	}
	if report.Totals, err = ComputeTotals(ds); err != nil {
		report.Warnings = append(report.Warnings, warningFromError(SectionTotals, err))
	}

	if report.Geo, err = ResolveCoordinates(ctx, ds, opts.Geo); err != nil {
		report.Warnings = append(report.Warnings, warningFromError(SectionGeo, err))
	} else if len(report.Geo.FallbackStates) > 0 {
		report.Warnings = append(report.Warnings, Warning{
			Kind:    WarningGeoLookupFallback,
			Section: SectionGeo,
			Message: fmt.Sprintf("state lookup failed, random point used for: %s",
				strings.Join(report.Geo.FallbackStates, ", ")),
		})
	}

	return report
}

// Unavailable lists the sections that were skipped.
func (r *Report) Unavailable() []string {
	var sections []string
	for _, w := range r.Warnings {
		if w.Kind == WarningMissingField || w.Kind == WarningGeoSkipped {
			sections = append(sections, w.Section)
		}
	}
	return sections
}
