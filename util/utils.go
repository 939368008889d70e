package util

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/twpayne/go-polyline"

	"github.com/reportit/reportit_api/internal/geo"
)

var (
	RgxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	return RgxEmail.MatchString(value)
}

func IsURL(value string) bool {
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}

func PointToLatLon(point pgtype.Point) (float64, float64) {
	return point.P.Y, point.P.X
}

// PointFromLatLon creates a pgtype.Point from latitude and longitude.
func PointFromLatLon(lat, lon float64) pgtype.Point {
	return pgtype.Point{
		P: pgtype.Vec2{
			X: lon,
			Y: lat,
		},
	}
}

func DecodePolyLines(shape string) ([][]float64, error) {
	decoded, _, err := polyline.DecodeCoords([]byte(shape))
	if err != nil {
		log.Println("error deocoding polyline: ", err)
		return nil, fmt.Errorf("failed to decode polyline %w", err)
	}
	return decoded, nil
}

// RingFromPolyline decodes an encoded polyline into the vertex ring of a
// coverage polygon. Decoded pairs are [lat, lon].
func RingFromPolyline(shape string) ([]geo.Point, error) {
	coords, err := DecodePolyLines(shape)
	if err != nil {
		return nil, err
	}
	if len(coords) < 3 {
		return nil, fmt.Errorf("polyline describes %d points, need at least 3 for an area", len(coords))
	}
	ring := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		ring = append(ring, geo.Point{Lat: c[0], Lon: c[1]})
	}
	return ring, nil
}

// IntPtr returns a pointer to the given integer.
func IntPtr(i int) *int {
	return &i
}
