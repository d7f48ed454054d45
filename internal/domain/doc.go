// Package domain models foodborne-illness outbreak records and the aggregate
// report derived from them.
//
// # Data Source
//
// Outbreak data arrives as a delimited text file with a header row, typically
// an export of the CDC National Outbreak Reporting System (NORS) with one row
// per reported outbreak. Column presence varies between exports, so every
// field is treated as optional:
//
//	Year, State, Food, Species, Illnesses, Hospitalizations, Fatalities
//
// Column names match case-insensitively. Count columns default to 0 when a
// cell is empty or unparseable; dataframe exports of integer columns with gaps
// render counts as floats ("5.0"), which are accepted and truncated.
//
// # Coordinates
//
// Coordinates come from one of two sources, chosen once per dataset:
//
//	direct:      columns whose names contain "lat" and "lon" (see [MatchColumn])
//	synthesized: one point per distinct State, drawn uniformly from the
//	             continental US bounding box (lat 25..49, lon -125..-66),
//	             or located through a [StateLocator] when one is configured
//
// Synthesized points are deterministic per State within a run. They are only
// stable across runs when a seed is supplied via [GeoOptions].
//
// # Report Sections
//
// Each section of a [Report] is computed independently. A section whose
// required columns are absent from the dataset is left empty and a
// [MissingFieldWarning] is recorded instead, so "no data" is never confused
// with "zero outbreaks".
package domain
