package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit/reportit_api/internal/geo"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"place_id": 1,
			"display_name": "Main Street, Clifton, Karachi, Pakistan",
			"address": {
				"road": "Main Street",
				"suburb": "Clifton",
				"city": "Karachi",
				"country": "Pakistan",
				"country_code": "pk"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	place, err := client.ReverseGeocode(context.Background(), 24.86, 67.0)
	require.NoError(t, err)
	assert.Equal(t, "Karachi", place.City)
	assert.Equal(t, "Clifton", place.District)
	assert.Equal(t, "Pakistan", place.Country)
	assert.Equal(t, "pk", place.CountryCode)
}

func TestFetchBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("polygon_geojson"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"place_id": 2,
			"display_name": "Clifton, Karachi",
			"address": {"city": "Karachi", "country": "Pakistan"},
			"geojson": {
				"type": "Polygon",
				"coordinates": [[[66.99, 24.85], [67.01, 24.85], [67.01, 24.87], [66.99, 24.87], [66.99, 24.85]]]
			}
		}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	boundary, err := client.FetchBoundary(context.Background(), "Clifton")
	require.NoError(t, err)
	require.Len(t, boundary.Geometry, 1)
	assert.True(t, boundary.Geometry.Covers(geo.Point{Lat: 24.86, Lon: 67.0}))
	assert.False(t, boundary.Geometry.Covers(geo.Point{Lat: 24.90, Lon: 67.0}))
}

func TestFetchBoundaryNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchBoundary(context.Background(), "nowhere")
	assert.Error(t, err)
}

func TestParseGeoJSONMultiPolygon(t *testing.T) {
	raw := []byte(`{
		"type": "MultiPolygon",
		"coordinates": [
			[[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]],
			[[[10, 10], [11, 10], [11, 11], [10, 11], [10, 10]]]
		]
	}`)

	mp, err := parseGeoJSONGeometry(raw)
	require.NoError(t, err)
	require.Len(t, mp, 2)
	assert.True(t, mp.Covers(geo.Point{Lat: 0.5, Lon: 0.5}))
	assert.True(t, mp.Covers(geo.Point{Lat: 10.5, Lon: 10.5}))
	assert.False(t, mp.Covers(geo.Point{Lat: 5, Lon: 5}))
}

func TestParseGeoJSONUnsupportedType(t *testing.T) {
	_, err := parseGeoJSONGeometry([]byte(`{"type": "Point", "coordinates": [1, 2]}`))
	assert.Error(t, err)
}
