// Package likes implements the like toggle shared by issues and comments:
// a second like from the same user removes the first, and the denormalized
// counter follows the rows without ever going negative.
package likes

import (
	"context"

	"github.com/google/uuid"
)

// Store is one likeable target's row and counter storage. Implementations
// are bound to a single issue or comment.
type Store interface {
	// Remove deletes the user's like if present and reports whether a row
	// was removed.
	Remove(ctx context.Context, userID uuid.UUID) (bool, error)
	// Add records the user's like.
	Add(ctx context.Context, userID uuid.UUID) error
	// AdjustCount moves the like counter by delta, clamped at zero, and
	// returns the resulting count.
	AdjustCount(ctx context.Context, delta int) (int, error)
}

// Result reports the state after a toggle.
type Result struct {
	Liked bool `json:"liked"`
	Count int  `json:"likes_count"`
}

// Toggle flips the user's like on the store's target. A first call adds the
// row and increments the counter; a second call removes it and decrements.
func Toggle(ctx context.Context, store Store, userID uuid.UUID) (Result, error) {
	removed, err := store.Remove(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if removed {
		count, err := store.AdjustCount(ctx, -1)
		return Result{Liked: false, Count: count}, err
	}

	if err := store.Add(ctx, userID); err != nil {
		return Result{}, err
	}
	count, err := store.AdjustCount(ctx, 1)
	return Result{Liked: true, Count: count}, err
}
