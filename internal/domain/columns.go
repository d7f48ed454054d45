package domain

import "strings"

var (
	latitudeNames  = []string{"lat", "latitude"}
	longitudeNames = []string{"lon", "lng", "long", "longitude"}
)

// MatchColumn returns the first column whose name contains fragment,
// ignoring case.
func MatchColumn(columns []string, fragment string) (string, bool) {
	fragment = strings.ToLower(fragment)
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), fragment) {
			return c, true
		}
	}
	return "", false
}

// MatchCoordinateColumns finds the latitude and longitude columns. A column
// named exactly like a coordinate (e.g. "Latitude", "lng") wins over one that
// merely contains the fragment, so "Population" does not shadow a later
// "Latitude". Both columns must match and be distinct.
func MatchCoordinateColumns(columns []string) (lat, lon string, ok bool) {
	lat, okLat := matchExactOrFragment(columns, latitudeNames, "lat")
	lon, okLon := matchExactOrFragment(columns, longitudeNames, "lon")
	if !okLat || !okLon || strings.EqualFold(lat, lon) {
		return "", "", false
	}
	return lat, lon, true
}

func matchExactOrFragment(columns, exact []string, fragment string) (string, bool) {
	for _, c := range columns {
		name := strings.ToLower(strings.TrimSpace(c))
		for _, e := range exact {
			if name == e {
				return c, true
			}
		}
	}
	return MatchColumn(columns, fragment)
}
