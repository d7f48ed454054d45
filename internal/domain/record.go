package domain

import (
	"math"
	"strconv"
	"strings"
)

// Recognized column names.
const (
	ColumnYear             = "Year"
	ColumnState            = "State"
	ColumnFood             = "Food"
	ColumnSpecies          = "Species"
	ColumnIllnesses        = "Illnesses"
	ColumnHospitalizations = "Hospitalizations"
	ColumnFatalities       = "Fatalities"
)

// OutbreakRecord is one row of the source table.
type OutbreakRecord struct {
	Row              int      `json:"row"` // 1-based data row, header excluded
	Year             int      `json:"year"`
	State            string   `json:"state,omitempty"`
	Food             string   `json:"food,omitempty"`
	Species          string   `json:"species,omitempty"`
	Illnesses        int      `json:"illnesses"`
	Hospitalizations int      `json:"hospitalizations"`
	Fatalities       int      `json:"fatalities"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Dataset is an ordered, immutable collection of outbreak records together
// with the header columns they were read from.
type Dataset struct {
	columns   []string
	index     map[string]int // lowercased column name -> position
	latColumn string
	lonColumn string
	records   []OutbreakRecord
}

// NewDataset builds a Dataset from a header row and its data rows. Rows
// shorter than the header are padded with absent values. Returns
// ErrEmptyDataset when there is no header or no data row.
func NewDataset(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 || len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{
		columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
		records: make([]OutbreakRecord, 0, len(rows)),
	}
	for i, h := range header {
		name := strings.TrimSpace(h)
		ds.columns[i] = name
		key := strings.ToLower(name)
		if _, dup := ds.index[key]; !dup {
			ds.index[key] = i
		}
	}

	lat, lon, hasCoords := MatchCoordinateColumns(ds.columns)
	if hasCoords {
		ds.latColumn, ds.lonColumn = lat, lon
	}

	for i, row := range rows {
		rec := OutbreakRecord{
			Row:              i + 1,
			Year:             parseWhole(ds.cell(row, ColumnYear)),
			State:            ds.cell(row, ColumnState),
			Food:             ds.cell(row, ColumnFood),
			Species:          ds.cell(row, ColumnSpecies),
			Illnesses:        parseCount(ds.cell(row, ColumnIllnesses)),
			Hospitalizations: parseCount(ds.cell(row, ColumnHospitalizations)),
			Fatalities:       parseCount(ds.cell(row, ColumnFatalities)),
		}
		if hasCoords {
			rec.Latitude = parseCoordinate(ds.cell(row, lat))
			rec.Longitude = parseCoordinate(ds.cell(row, lon))
		}
		ds.records = append(ds.records, rec)
	}

	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Columns returns a copy of the header columns in file order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Records returns a copy of the records in file order. The coordinate
// pointers are shared with the dataset and must not be written through.
func (d *Dataset) Records() []OutbreakRecord {
	return append([]OutbreakRecord(nil), d.records...)
}

// HasColumn reports whether the header contains name, ignoring case.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[strings.ToLower(name)]
	return ok
}

// CoordinateColumns returns the matched latitude and longitude columns.
func (d *Dataset) CoordinateColumns() (lat, lon string, ok bool) {
	return d.latColumn, d.lonColumn, d.latColumn != ""
}

// missingColumns returns the subset of names absent from the header.
func (d *Dataset) missingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !d.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// cell returns the trimmed value of column name in row, or "" when the
// column is absent or the row is short.
func (d *Dataset) cell(row []string, name string) string {
	i, ok := d.index[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// maxCellValue bounds numeric cells so that summing them cannot overflow.
const maxCellValue = math.MaxInt32

// parseWhole parses an integer cell, accepting float renderings such as
// "2010.0". Returns 0 for empty or unparseable values; magnitudes beyond
// maxCellValue are clamped.
func parseWhole(s string) int {
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return min(max(v, -maxCellValue), maxCellValue)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Max(math.Min(f, maxCellValue), -maxCellValue))
}

// parseCount parses a non-negative count; negative values clamp to 0.
func parseCount(s string) int {
	return max(parseWhole(s), 0)
}

// parseCoordinate returns nil for empty, non-numeric, or non-finite values.
func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
