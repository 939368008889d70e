package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an insert-only inbox entry. The push delivery that may
// accompany it is best effort; the row is the durable record.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Screen      string    `json:"screen"`
	ScreenID    string    `json:"screen_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
