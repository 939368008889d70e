package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyLineDecoder(t *testing.T) {
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	result, err := DecodePolyLines(encoded)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.InDelta(t, 38.5, result[0][0], 1e-5)
	assert.InDelta(t, -120.2, result[0][1], 1e-5)
}

func TestRingFromPolyline(t *testing.T) {
	// Three points decode into a valid ring; fewer must be rejected.
	ring, err := RingFromPolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, ring, 3)
	assert.InDelta(t, 38.5, ring[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, ring[0].Lon, 1e-5)

	_, err = RingFromPolyline("_p~iF~ps|U")
	assert.Error(t, err)
}

func TestPointRoundTrip(t *testing.T) {
	p := PointFromLatLon(35.19, 33.36)
	lat, lon := PointToLatLon(p)
	assert.Equal(t, 35.19, lat)
	assert.Equal(t, 33.36, lon)
}

func TestValidateStructCoordinates(t *testing.T) {
	type loc struct {
		Lat float64 `validate:"latitude"`
		Lon float64 `validate:"longitude"`
	}

	assert.NoError(t, ValidateStruct(loc{Lat: 35.19, Lon: 33.36}))
	assert.Error(t, ValidateStruct(loc{Lat: 99, Lon: 33.36}))
	assert.Error(t, ValidateStruct(loc{Lat: 35.19, Lon: 190}))
}

func TestValidateStructCategory(t *testing.T) {
	type req struct {
		Category string `validate:"category"`
	}

	assert.NoError(t, ValidateStruct(req{Category: "roads_potholes"}))
	assert.Error(t, ValidateStruct(req{Category: "weather"}))
}
