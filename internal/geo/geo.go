// Package geo holds the plain geometry used for jurisdiction and proximity
// checks. Storage-side containment runs through PostGIS; these helpers cover
// the in-process paths (boundary tagging, websocket fan-out, test doubles).
package geo

import (
	"fmt"
	"math"
)

const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Ring is a closed sequence of points. The first and last point are expected
// to be equal; Covers tolerates an unclosed ring.
type Ring []Point

// Polygon follows the GeoJSON convention: first ring is the outer boundary,
// any further rings are holes.
type Polygon struct {
	Rings []Ring
}

// MultiPolygon is a set of disjoint polygons, e.g. a city with islands.
type MultiPolygon []Polygon

// EmptyPolygon is the degenerate default jurisdiction for an official whose
// area has not been set yet. It covers nothing.
func EmptyPolygon() Polygon {
	z := Point{}
	return Polygon{Rings: []Ring{{z, z, z, z, z}}}
}

// NewPolygon builds a single-ring polygon, closing the ring if needed.
func NewPolygon(outer Ring) Polygon {
	if len(outer) > 0 && outer[0] != outer[len(outer)-1] {
		outer = append(outer, outer[0])
	}
	return Polygon{Rings: []Ring{outer}}
}

func (p Polygon) outer() Ring {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// IsZero reports whether the polygon is absent or the degenerate default.
func (p Polygon) IsZero() bool {
	outer := p.outer()
	if len(outer) == 0 {
		return true
	}
	for _, pt := range outer {
		if pt != (Point{}) {
			return false
		}
	}
	return true
}

// Validate checks that the polygon is a usable simple polygon: a closed outer
// ring of at least three distinct vertices with finite coordinates.
func (p Polygon) Validate() error {
	outer := p.outer()
	if len(outer) < 4 {
		return fmt.Errorf("polygon outer ring has %d points, need at least 4", len(outer))
	}
	if outer[0] != outer[len(outer)-1] {
		return fmt.Errorf("polygon outer ring is not closed")
	}
	distinct := map[Point]struct{}{}
	for _, pt := range outer {
		if math.IsNaN(pt.Lat) || math.IsInf(pt.Lat, 0) || math.IsNaN(pt.Lon) || math.IsInf(pt.Lon, 0) {
			return fmt.Errorf("polygon contains non-finite coordinate")
		}
		if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
			return fmt.Errorf("polygon coordinate out of range: %.6f,%.6f", pt.Lat, pt.Lon)
		}
		distinct[pt] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("polygon outer ring has fewer than 3 distinct vertices")
	}
	return nil
}

// BBox returns minLon, minLat, maxLon, maxLat of the outer ring.
func (p Polygon) BBox() [4]float64 {
	outer := p.outer()
	if len(outer) == 0 {
		return [4]float64{}
	}
	b := [4]float64{outer[0].Lon, outer[0].Lat, outer[0].Lon, outer[0].Lat}
	for _, pt := range outer[1:] {
		b[0] = math.Min(b[0], pt.Lon)
		b[1] = math.Min(b[1], pt.Lat)
		b[2] = math.Max(b[2], pt.Lon)
		b[3] = math.Max(b[3], pt.Lat)
	}
	return b
}

// Covers reports whether the point lies inside the polygon or on its
// boundary. Hole boundaries count as covered as well.
func (p Polygon) Covers(pt Point) bool {
	outer := p.outer()
	if len(outer) == 0 || p.IsZero() {
		return false
	}
	b := p.BBox()
	if pt.Lon < b[0] || pt.Lon > b[2] || pt.Lat < b[1] || pt.Lat > b[3] {
		return false
	}
	if onRing(pt, outer) {
		return true
	}
	if !inRing(pt, outer) {
		return false
	}
	for _, hole := range p.Rings[1:] {
		if onRing(pt, hole) {
			return true
		}
		if inRing(pt, hole) {
			return false
		}
	}
	return true
}

// Covers reports whether any member polygon covers the point.
func (m MultiPolygon) Covers(pt Point) bool {
	for _, p := range m {
		if p.Covers(pt) {
			return true
		}
	}
	return false
}

// inRing is the even-odd ray casting test. Boundary behavior is undefined
// here; callers check onRing first.
func inRing(pt Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi) {
			inside = !inside
		}
	}
	return inside
}

const boundaryEps = 1e-9

// onRing reports whether the point lies on any segment of the ring.
func onRing(pt Point, ring Ring) bool {
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if onSegment(pt, ring[j], ring[i]) {
			return true
		}
	}
	return false
}

func onSegment(pt, a, b Point) bool {
	cross := (b.Lon-a.Lon)*(pt.Lat-a.Lat) - (b.Lat-a.Lat)*(pt.Lon-a.Lon)
	if math.Abs(cross) > boundaryEps {
		return false
	}
	if pt.Lon < math.Min(a.Lon, b.Lon)-boundaryEps || pt.Lon > math.Max(a.Lon, b.Lon)+boundaryEps {
		return false
	}
	if pt.Lat < math.Min(a.Lat, b.Lat)-boundaryEps || pt.Lat > math.Max(a.Lat, b.Lat)+boundaryEps {
		return false
	}
	return true
}

// Distance returns the haversine great-circle distance in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether b lies within radiusM meters of a.
func WithinRadius(a, b Point, radiusM float64) bool {
	return Distance(a, b) <= radiusM
}
