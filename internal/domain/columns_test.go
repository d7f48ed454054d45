package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchColumn(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		fragment string
		want     string
		wantOK   bool
	}{
		{"exact", []string{"Year", "lat"}, "lat", "lat", true},
		{"case-insensitive", []string{"Year", "LATITUDE"}, "lat", "LATITUDE", true},
		{"first match wins", []string{"site_lat", "Latitude"}, "lat", "site_lat", true},
		{"no match", []string{"Year", "State"}, "lon", "", false},
		{"empty columns", nil, "lat", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchColumn(tt.columns, tt.fragment)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchCoordinateColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		lat     string
		lon     string
		ok      bool
	}{
		{"standard names", []string{"Year", "Latitude", "Longitude"}, "Latitude", "Longitude", true},
		{"short names", []string{"lat", "lng"}, "lat", "lng", true},
		{"substring fallback", []string{"geo_lat_dd", "geo_lon_dd"}, "geo_lat_dd", "geo_lon_dd", true},
		{"exact beats earlier substring", []string{"Population", "Latitude", "Longitude"}, "Latitude", "Longitude", true},
		{"only latitude", []string{"Latitude", "State"}, "", "", false},
		{"only longitude", []string{"Longitude"}, "", "", false},
		{"single combined column", []string{"latlon"}, "", "", false},
		{"none", outbreakHeader, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := MatchCoordinateColumns(tt.columns)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lon, lon)
		})
	}
}
