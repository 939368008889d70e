package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/status"
)

// Categories an issue can be filed under. Requests must carry at least one.
var Categories = []string{
	"electric", "gas", "water", "waste", "sewerage", "stormwater",
	"roads_potholes", "road_safety", "street_lighting", "public_transportation",
	"parks_recreation", "illegal_dumping", "noise_pollution", "traffic_signals",
	"vandalism_graffiti", "tree_vegetation_issues", "animal_control",
	"building_safety", "fire_safety", "environmental_hazards",
	"parking_violations", "public_health", "air_quality", "zoning_planning",
	"sidewalk_maintenance", "public_toilets", "public_safety", "other",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

func ValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// ValidateCategories enforces the non-empty-list rule applied on every save.
func ValidateCategories(categories []string) error {
	if len(categories) < 1 {
		return &ValidationError{Field: "categories", Message: "at least one category must be selected"}
	}
	for _, c := range categories {
		if !ValidCategory(c) {
			return &ValidationError{Field: "categories", Message: "invalid category: " + c}
		}
	}
	return nil
}

type Issue struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Categories    []string      `json:"categories"`
	Images        []string      `json:"images,omitempty"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	Status        status.Status `json:"issue_status"`
	IsAnonymous   bool          `json:"is_anonymous"`
	LikesCount    int           `json:"likes_count"`
	CommentsCount int           `json:"comments_count"`
	AreaID        *int64        `json:"area_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (i Issue) Location() geo.Point {
	return geo.Point{Lat: i.Latitude, Lon: i.Longitude}
}

type CreateIssueRequest struct {
	UserID      uuid.UUID `json:"-"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"required,max=280"`
	Categories  []string  `json:"categories" validate:"required,min=1,dive,category"`
	Latitude    float64   `json:"latitude" validate:"latitude"`
	Longitude   float64   `json:"longitude" validate:"longitude"`
	Images      []string  `json:"images,omitempty"`
	IsAnonymous bool      `json:"is_anonymous,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type NearbyIssuesParams struct {
	Latitude  float64
	Longitude float64
	Radius    float64
	Statuses  []string
	Page      int
	PageSize  int
}

// Like joins a user to exactly one of an issue or a comment.
type Like struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	IssueID   *uuid.UUID `json:"issue_id,omitempty"`
	CommentID *uuid.UUID `json:"comment_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
