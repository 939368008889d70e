package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLat, minLon, maxLat, maxLon float64) Polygon {
	return NewPolygon(Ring{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
	})
}

func TestPolygonCovers(t *testing.T) {
	// Jurisdiction around Karachi used throughout the issue-routing tests.
	poly := square(24.85, 66.99, 24.87, 67.01)

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"interior", Point{Lat: 24.86, Lon: 67.00}, true},
		{"on edge", Point{Lat: 24.85, Lon: 67.00}, true},
		{"on vertex", Point{Lat: 24.85, Lon: 66.99}, true},
		{"outside east", Point{Lat: 24.86, Lon: 67.02}, false},
		{"outside north", Point{Lat: 24.88, Lon: 67.00}, false},
		{"far away", Point{Lat: 31.52, Lon: 74.35}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, poly.Covers(tc.pt))
		})
	}
}

func TestPolygonCoversHole(t *testing.T) {
	poly := square(0, 0, 10, 10)
	hole := Ring{{Lat: 4, Lon: 4}, {Lat: 4, Lon: 6}, {Lat: 6, Lon: 6}, {Lat: 6, Lon: 4}, {Lat: 4, Lon: 4}}
	poly.Rings = append(poly.Rings, hole)

	assert.True(t, poly.Covers(Point{Lat: 2, Lon: 2}))
	assert.False(t, poly.Covers(Point{Lat: 5, Lon: 5}), "inside hole")
	assert.True(t, poly.Covers(Point{Lat: 4, Lon: 5}), "hole boundary is covered")
}

func TestEmptyPolygonCoversNothing(t *testing.T) {
	empty := EmptyPolygon()
	assert.True(t, empty.IsZero())
	assert.False(t, empty.Covers(Point{}))
	assert.False(t, empty.Covers(Point{Lat: 24.86, Lon: 67.00}))
}

func TestMultiPolygonCovers(t *testing.T) {
	m := MultiPolygon{square(0, 0, 1, 1), square(5, 5, 6, 6)}
	assert.True(t, m.Covers(Point{Lat: 0.5, Lon: 0.5}))
	assert.True(t, m.Covers(Point{Lat: 5.5, Lon: 5.5}))
	assert.False(t, m.Covers(Point{Lat: 3, Lon: 3}))
}

func TestPolygonValidate(t *testing.T) {
	assert.NoError(t, square(24.85, 66.99, 24.87, 67.01).Validate())

	open := Polygon{Rings: []Ring{{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}}}
	assert.Error(t, open.Validate(), "unclosed ring")

	assert.Error(t, EmptyPolygon().Validate(), "degenerate ring")

	outOfRange := NewPolygon(Ring{{Lat: 95, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}})
	assert.Error(t, outOfRange.Validate())
}

func TestDistance(t *testing.T) {
	// Karachi city center to a point ~1.1km east along the same latitude.
	a := Point{Lat: 24.8607, Lon: 67.0011}
	b := Point{Lat: 24.8607, Lon: 67.0111}
	d := Distance(a, b)
	assert.InDelta(t, 1010, d, 30)

	assert.Zero(t, Distance(a, a))
	assert.True(t, WithinRadius(a, b, 1200))
	assert.False(t, WithinRadius(a, b, 500))
}

func TestWKTRoundTrip(t *testing.T) {
	poly := square(24.85, 66.99, 24.87, 67.01)
	parsed, err := ParsePolygonWKT(poly.WKT())
	require.NoError(t, err)
	assert.Equal(t, poly, parsed)
	assert.True(t, parsed.Covers(Point{Lat: 24.86, Lon: 67.00}))
}

func TestParseMultiPolygonWKT(t *testing.T) {
	m := MultiPolygon{square(0, 0, 1, 1), square(5, 5, 6, 6)}
	parsed, err := ParseMultiPolygonWKT(m.WKT())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)

	// A bare POLYGON is accepted for single-part boundaries.
	single, err := ParseMultiPolygonWKT(square(0, 0, 1, 1).WKT())
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = ParsePolygonWKT("LINESTRING(0 0, 1 1)")
	assert.Error(t, err)
}
