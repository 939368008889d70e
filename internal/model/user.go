package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/geo"
)

// Role is the closed set of user roles. Permission checks compare against
// these values once at the boundary; the core consumes a pre-validated Actor.
type Role string

const (
	RoleUser     Role = "user"
	RoleOfficial Role = "official"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     *string    `json:"username,omitempty"`
	Role         Role       `json:"role"`
	Verified     bool       `json:"verified"`
	FCMTokens    []string   `json:"fcm_tokens,omitempty"`
	ProfileImage *string    `json:"profile_image,omitempty"`
	Location     *geo.Point `json:"location,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Actor is the authenticated caller as resolved by the login middleware.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// PermissionError reports a role mismatch for a requested action.
type PermissionError struct {
	Action string
	Role   Role
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Action)
}

// ValidationError names the offending field of a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
