package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset is returned when the source has no header or no data rows.
var ErrEmptyDataset = errors.New("dataset is empty")

// ErrGeoResolutionSkipped reports that the dataset has neither coordinate
// columns nor a State column, so no geospatial layer can be built.
var ErrGeoResolutionSkipped = errors.New("no coordinate or state columns, geospatial layer skipped")

// DataLoadError is the fatal error produced when the source file cannot be
// turned into a Dataset. Nothing is rendered when it occurs.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load dataset %q: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// MissingFieldWarning is returned by a report computation whose required
// columns are absent. It is non-fatal: the section is reported unavailable.
type MissingFieldWarning struct {
	Section string
	Columns []string
}

func (w *MissingFieldWarning) Error() string {
	return fmt.Sprintf("%s unavailable: missing column(s) %s", w.Section, strings.Join(w.Columns, ", "))
}

// WarningKind classifies a non-fatal condition surfaced alongside a report.
type WarningKind string

const (
	WarningMissingField      WarningKind = "missing_field"
	WarningGeoSkipped        WarningKind = "geo_resolution_skipped"
	WarningGeoLookupFallback WarningKind = "geo_lookup_fallback"
)

// Warning is the serialized form of a non-fatal condition.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Section string      `json:"section"`
	Message string      `json:"message"`
	Columns []string    `json:"columns,omitempty"`
}

// warningFromError converts a computation error into a report warning.
func warningFromError(section string, err error) Warning {
	var missing *MissingFieldWarning
	switch {
	case errors.As(err, &missing):
		return Warning{
			Kind:    WarningMissingField,
			Section: missing.Section,
			Message: missing.Error(),
			Columns: missing.Columns,
		}
	case errors.Is(err, ErrGeoResolutionSkipped):
		return Warning{Kind: WarningGeoSkipped, Section: section, Message: err.Error()}
	default:
		return Warning{Kind: WarningKind("error"), Section: section, Message: err.Error()}
	}
}
