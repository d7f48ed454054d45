package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outbreakHeader = []string{"Year", "State", "Food", "Species", "Illnesses", "Hospitalizations", "Fatalities"}

// scenarioDataset is the three-record dataset used across aggregate tests.
func scenarioDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(outbreakHeader, [][]string{
		{"2010", "TX", "Cheese", "Salmonella", "5", "2", "0"},
		{"2010", "CA", "Cheese", "Listeria", "3", "1", "0"},
		{"2011", "TX", "Eggs", "Salmonella", "10", "5", "1"},
	})
	require.NoError(t, err)
	return ds
}

func TestNewDataset(t *testing.T) {
	t.Run("parses recognized columns", func(t *testing.T) {
		ds := scenarioDataset(t)

		require.Equal(t, 3, ds.Len())
		rec := ds.Records()[2]
		assert.Equal(t, 3, rec.Row)
		assert.Equal(t, 2011, rec.Year)
		assert.Equal(t, "TX", rec.State)
		assert.Equal(t, "Eggs", rec.Food)
		assert.Equal(t, "Salmonella", rec.Species)
		assert.Equal(t, 10, rec.Illnesses)
		assert.Equal(t, 5, rec.Hospitalizations)
		assert.Equal(t, 1, rec.Fatalities)
		assert.Nil(t, rec.Latitude)
		assert.Nil(t, rec.Longitude)
	})

	t.Run("column names match case-insensitively", func(t *testing.T) {
		ds, err := NewDataset([]string{" year ", "FOOD", "hospitalizations"}, [][]string{{"2019", "Oysters", "4"}})
		require.NoError(t, err)

		assert.True(t, ds.HasColumn(ColumnYear))
		assert.True(t, ds.HasColumn(ColumnFood))
		assert.False(t, ds.HasColumn(ColumnState))
		rec := ds.Records()[0]
		assert.Equal(t, 2019, rec.Year)
		assert.Equal(t, "Oysters", rec.Food)
		assert.Equal(t, 4, rec.Hospitalizations)
	})

	t.Run("missing and malformed cells default to zero", func(t *testing.T) {
		ds, err := NewDataset(outbreakHeader, [][]string{
			{"", "OH", "", "", "n/a", "", "-3"},
			{"2012.0", "OH", "Beef"}, // short row
		})
		require.NoError(t, err)

		recs := ds.Records()
		assert.Equal(t, 0, recs[0].Year)
		assert.Equal(t, 0, recs[0].Illnesses)
		assert.Equal(t, 0, recs[0].Hospitalizations)
		assert.Equal(t, 0, recs[0].Fatalities, "negative counts clamp to zero")
		assert.Equal(t, 2012, recs[1].Year)
		assert.Equal(t, "Beef", recs[1].Food)
		assert.Equal(t, 0, recs[1].Illnesses)
	})

	t.Run("float counts truncate", func(t *testing.T) {
		ds, err := NewDataset([]string{"Illnesses"}, [][]string{{"12.0"}, {"7.9"}})
		require.NoError(t, err)
		assert.Equal(t, 12, ds.Records()[0].Illnesses)
		assert.Equal(t, 7, ds.Records()[1].Illnesses)
	})

	t.Run("oversized counts clamp", func(t *testing.T) {
		ds, err := NewDataset([]string{"Illnesses", "Fatalities"}, [][]string{
			{"1e20", "99999999999999999999"},
			{"9223372036854775807", "Inf"},
		})
		require.NoError(t, err)
		recs := ds.Records()
		assert.Equal(t, maxCellValue, recs[0].Illnesses)
		assert.Equal(t, maxCellValue, recs[0].Fatalities)
		assert.Equal(t, maxCellValue, recs[1].Illnesses)
		assert.Equal(t, 0, recs[1].Fatalities)

		totals, err := ComputeTotals(ds)
		require.Error(t, err, "hospitalizations column is absent")
		assert.Equal(t, 2*maxCellValue, totals.Illnesses.Value)
		assert.Positive(t, totals.Illnesses.Value)
	})

	t.Run("coordinates parsed when columns match", func(t *testing.T) {
		ds, err := NewDataset([]string{"State", "Latitude", "Longitude"}, [][]string{
			{"TX", "30.27", "-97.74"},
			{"CA", "abc", "-120.1"},
			{"OR", "", ""},
		})
		require.NoError(t, err)

		lat, lon, ok := ds.CoordinateColumns()
		require.True(t, ok)
		assert.Equal(t, "Latitude", lat)
		assert.Equal(t, "Longitude", lon)

		recs := ds.Records()
		require.NotNil(t, recs[0].Latitude)
		assert.Equal(t, 30.27, *recs[0].Latitude)
		assert.Equal(t, -97.74, *recs[0].Longitude)
		assert.Nil(t, recs[1].Latitude)
		assert.NotNil(t, recs[1].Longitude)
		assert.Nil(t, recs[2].Latitude)
	})

	t.Run("empty header", func(t *testing.T) {
		_, err := NewDataset(nil, [][]string{{"1"}})
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("no data rows", func(t *testing.T) {
		_, err := NewDataset(outbreakHeader, nil)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})
}

func TestDataset_AccessorsReturnCopies(t *testing.T) {
	ds := scenarioDataset(t)

	cols := ds.Columns()
	cols[0] = "Mutated"
	recs := ds.Records()
	recs[0].Food = "Mutated"

	assert.Equal(t, "Year", ds.Columns()[0])
	assert.Equal(t, "Cheese", ds.Records()[0].Food)
}
