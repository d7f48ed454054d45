package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

// Report section names used in warnings.
const (
	SectionTopFoods  = "top_foods_by_hospitalizations"
	SectionMostFatal = "most_fatal_records"
	SectionTotals    = "totals"
	SectionGeo       = "geo"
)

// YearCount is the number of outbreaks reported in one year. Year 0 collects
// records without a year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// FoodHospitalizations is the summed hospitalizations attributed to a food.
type FoodHospitalizations struct {
	Food             string `json:"food"`
	Hospitalizations int    `json:"hospitalizations"`
}

// FatalRecord is the projection of a record shown in the most-fatal table.
type FatalRecord struct {
	Year       int    `json:"year"`
	State      string `json:"state"`
	Food       string `json:"food"`
	Species    string `json:"species"`
	Fatalities int    `json:"fatalities"`
}

// Total is a summed metric that may be unavailable when its column is absent.
type Total struct {
	Value     int
	Available bool
}

// MarshalJSON renders an unavailable total as "unavailable".
func (t Total) MarshalJSON() ([]byte, error) {
	if !t.Available {
		return json.Marshal("unavailable")
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts a number, or any string or null as unavailable.
func (t *Total) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Total{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode total: %w", err)
	}
	*t = Total{Value: v, Available: true}
	return nil
}

// Totals are the headline counters of the report.
type Totals struct {
	Illnesses        Total `json:"illnesses"`
	Hospitalizations Total `json:"hospitalizations"`
	Fatalities       Total `json:"fatalities"`
}

// YearlyTrend counts records per year, ascending by year. Records without a
// year, including every record when the Year column is absent, fall into the
// 0 bucket, so the counts always sum to ds.Len().
func YearlyTrend(ds *Dataset) []YearCount {
	counts := make(map[int]int)
	for _, r := range ds.records {
		counts[r.Year]++
	}

	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// TopFoodsByHospitalizations sums hospitalizations per food and returns the k
// largest, descending. Ties keep the order in which foods first appear.
// Records without a food are not grouped.
func TopFoodsByHospitalizations(ds *Dataset, k int) ([]FoodHospitalizations, error) {
	if missing := ds.missingColumns(ColumnFood, ColumnHospitalizations); len(missing) > 0 {
		return nil, &MissingFieldWarning{Section: SectionTopFoods, Columns: missing}
	}

	sums := make(map[string]int)
	var order []string
	for _, r := range ds.records {
		if r.Food == "" {
			continue
		}
		if _, seen := sums[r.Food]; !seen {
			order = append(order, r.Food)
		}
		sums[r.Food] += r.Hospitalizations
	}

	out := make([]FoodHospitalizations, 0, len(order))
	for _, food := range order {
		out = append(out, FoodHospitalizations{Food: food, Hospitalizations: sums[food]})
	}
	slices.SortStableFunc(out, func(a, b FoodHospitalizations) int {
		return cmp.Compare(b.Hospitalizations, a.Hospitalizations)
	})
	return truncate(out, k), nil
}

// MostFatalRecords returns the k records with the most fatalities,
// descending. Ties keep file order.
func MostFatalRecords(ds *Dataset, k int) ([]FatalRecord, error) {
	if missing := ds.missingColumns(ColumnFatalities); len(missing) > 0 {
		return nil, &MissingFieldWarning{Section: SectionMostFatal, Columns: missing}
	}

	sorted := ds.Records()
	slices.SortStableFunc(sorted, func(a, b OutbreakRecord) int {
		return cmp.Compare(b.Fatalities, a.Fatalities)
	})
	sorted = truncate(sorted, k)

	out := make([]FatalRecord, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, FatalRecord{
			Year:       r.Year,
			State:      r.State,
			Food:       r.Food,
			Species:    r.Species,
			Fatalities: r.Fatalities,
		})
	}
	return out, nil
}

// ComputeTotals sums the three count columns. A metric whose column is absent
// is unavailable rather than 0, and the returned warning names every such
// column. The available metrics are still filled in.
func ComputeTotals(ds *Dataset) (Totals, error) {
	totals := Totals{
		Illnesses:        Total{Available: ds.HasColumn(ColumnIllnesses)},
		Hospitalizations: Total{Available: ds.HasColumn(ColumnHospitalizations)},
		Fatalities:       Total{Available: ds.HasColumn(ColumnFatalities)},
	}
	for _, r := range ds.records {
		totals.Illnesses.Value += r.Illnesses
		totals.Hospitalizations.Value += r.Hospitalizations
		totals.Fatalities.Value += r.Fatalities
	}

	missing := ds.missingColumns(ColumnIllnesses, ColumnHospitalizations, ColumnFatalities)
	if len(missing) > 0 {
		return totals, &MissingFieldWarning{Section: SectionTotals, Columns: missing}
	}
	return totals, nil
}

func truncate[T any](s []T, k int) []T {
	if k < 0 {
		k = 0
	}
	if len(s) > k {
		return s[:k]
	}
	return s
}
