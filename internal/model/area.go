package model

import (
	"time"

	"github.com/reportit/reportit_api/internal/geo"
)

// AreaLocation tags issues with a human-readable locality. Populated lazily
// from reverse geocoding; it is a cache, never a source of truth.
type AreaLocation struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	City      string           `json:"city,omitempty"`
	Country   string           `json:"country,omitempty"`
	Boundary  geo.MultiPolygon `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}
