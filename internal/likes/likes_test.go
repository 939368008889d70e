package likes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mirrors the SQL adapters: a row set plus a counter clamped at
// zero on decrement.
type memStore struct {
	rows  map[uuid.UUID]bool
	count int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uuid.UUID]bool)}
}

func (s *memStore) Remove(_ context.Context, userID uuid.UUID) (bool, error) {
	if !s.rows[userID] {
		return false, nil
	}
	delete(s.rows, userID)
	return true, nil
}

func (s *memStore) Add(_ context.Context, userID uuid.UUID) error {
	s.rows[userID] = true
	return nil
}

func (s *memStore) AdjustCount(_ context.Context, delta int) (int, error) {
	s.count += delta
	if s.count < 0 {
		s.count = 0
	}
	return s.count, nil
}

func TestToggleAddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	user := uuid.New()

	res, err := Toggle(ctx, store, user)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Count)
	assert.True(t, store.rows[user])

	res, err = Toggle(ctx, store, user)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.Count)
	assert.False(t, store.rows[user])
}

func TestToggleCountsPerUser(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	first, second := uuid.New(), uuid.New()

	res, err := Toggle(ctx, store, first)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	res, err = Toggle(ctx, store, second)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	res, err = Toggle(ctx, store, first)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 1, res.Count)
	assert.True(t, store.rows[second])
}

func TestToggleNeverDropsCountBelowZero(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	// A drifted counter: the row exists but the count already reads zero.
	store := newMemStore()
	store.rows[user] = true

	res, err := Toggle(ctx, store, user)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.Count)
}
