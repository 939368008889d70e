package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/geo"
)

// Official binds a user to a jurisdiction polygon. Saving an official
// promotes the user's role and recomputes the assigned-issue set from
// scratch against the new polygon.
type Official struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	AreaRange      geo.Polygon `json:"-"`
	Area           []geo.Point `json:"area_range,omitempty"`
	CityName       *string     `json:"city_name,omitempty"`
	DistrictName   *string     `json:"district_name,omitempty"`
	CountryName    *string     `json:"country_name,omitempty"`
	CountryCode    string      `json:"country_code,omitempty"`
	AssignedIssues []uuid.UUID `json:"assigned_issues,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CountryCodeFor derives the stored country code the same way on every save.
func CountryCodeFor(countryName string) string {
	trimmed := strings.TrimSpace(countryName)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) > 3 {
		trimmed = trimmed[:3]
	}
	return strings.ToUpper(trimmed)
}

type SaveOfficialRequest struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	CityName     string    `json:"city_name,omitempty"`
	DistrictName string    `json:"district_name,omitempty"`
	CountryName  string    `json:"country_name,omitempty"`
	// AreaPolyline carries the jurisdiction boundary as an encoded polyline.
	// When empty the boundary is looked up from the named district instead.
	AreaPolyline string `json:"area_polyline,omitempty"`
}
