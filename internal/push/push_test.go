package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit/reportit_api/internal/model"
)

type memStore struct {
	created []model.Notification
	fail    bool
}

func (s *memStore) CreateNotification(_ context.Context, n model.Notification) (model.Notification, error) {
	if s.fail {
		return model.Notification{}, errors.New("insert failed")
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	s.created = append(s.created, n)
	return n, nil
}

// fakeGateway fails tokens listed in bad and errors wholesale when down.
type fakeGateway struct {
	bad   map[string]bool
	down  bool
	calls int
}

func (g *fakeGateway) SendMulticast(_ context.Context, tokens []string, _, _ string, _ map[string]string) (Result, error) {
	g.calls++
	if g.down {
		return Result{}, errors.New("connection refused")
	}
	var res Result
	for _, tok := range tokens {
		if g.bad[tok] {
			res.FailureCount++
			res.Responses = append(res.Responses, TokenResult{Token: tok, Error: "unregistered"})
			continue
		}
		res.SuccessCount++
		res.Responses = append(res.Responses, TokenResult{Token: tok, Success: true})
	}
	return res, nil
}

func userWithTokens(tokens ...string) model.User {
	return model.User{ID: uuid.New(), FCMTokens: tokens}
}

func TestNotifyPersistsAndDelivers(t *testing.T) {
	store := &memStore{}
	gateway := &fakeGateway{}
	d := NewDispatcher(store, gateway)

	user := userWithTokens("tok-1", "tok-2")
	n, res, err := d.Notify(context.Background(), user, "Issue Approved", "desc", "issueDetail", "42")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, user.ID, n.UserID)
	assert.Equal(t, "issueDetail", n.Screen)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Zero(t, res.FailureCount)
}

func TestNotifyWithoutTokensSkipsDelivery(t *testing.T) {
	store := &memStore{}
	gateway := &fakeGateway{}
	d := NewDispatcher(store, gateway)

	_, res, err := d.Notify(context.Background(), model.User{ID: uuid.New()}, "t", "d", "issueDetail", "1")
	require.NoError(t, err)
	assert.Equal(t, "skipped", res.Status)
	assert.Zero(t, gateway.calls)
	assert.Len(t, store.created, 1, "row persists even without delivery")
}

func TestNotifyPartialDeliveryFailure(t *testing.T) {
	store := &memStore{}
	gateway := &fakeGateway{bad: map[string]bool{"tok-dead": true}}
	d := NewDispatcher(store, gateway)

	_, res, err := d.Notify(context.Background(), userWithTokens("tok-live", "tok-dead"), "t", "d", "issueDetail", "1")
	require.NoError(t, err, "per-token failures never fail the call")
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	require.Len(t, res.Responses, 2)
	assert.False(t, res.Responses[1].Success)
	assert.Equal(t, "unregistered", res.Responses[1].Error)
}

func TestNotifyTransportDown(t *testing.T) {
	store := &memStore{}
	d := NewDispatcher(store, &fakeGateway{down: true})

	_, res, err := d.Notify(context.Background(), userWithTokens("tok-1"), "t", "d", "issueDetail", "1")
	require.NoError(t, err, "transport failure is converted, not propagated")
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, 1, res.FailureCount)
	assert.NotEmpty(t, res.Error)
	assert.Len(t, store.created, 1, "row survives transport failure")
}

func TestNotifyStoreFailure(t *testing.T) {
	d := NewDispatcher(&memStore{fail: true}, &fakeGateway{})

	_, _, err := d.Notify(context.Background(), userWithTokens("tok-1"), "t", "d", "issueDetail", "1")
	assert.Error(t, err, "row persistence is the one hard requirement")
}
