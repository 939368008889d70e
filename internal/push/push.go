// Package push persists notifications and delivers them through the push
// gateway. The persisted row is the durable inbox entry; delivery is best
// effort and never fails the calling operation.
package push

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/metrics"
	"github.com/reportit/reportit_api/internal/model"
)

// Gateway multicasts one message to a set of device tokens, reporting the
// outcome per token. A returned error means the transport as a whole was
// unreachable; per-token failures live in the Result.
type Gateway interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (Result, error)
}

// NotificationStore persists notification rows.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
}

// TokenResult is the delivery outcome for a single device token.
type TokenResult struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Result mirrors the multicast response shape of the delivery backend.
type Result struct {
	Status       string        `json:"status"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Responses    []TokenResult `json:"responses,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type Dispatcher struct {
	Store   NotificationStore
	Gateway Gateway
}

func NewDispatcher(store NotificationStore, gateway Gateway) *Dispatcher {
	return &Dispatcher{Store: store, Gateway: gateway}
}

// Notify creates the notification row for the user and, when the user has
// registered tokens, attempts push delivery. The row creation error is the
// only one surfaced; delivery problems are logged and folded into the
// returned Result.
func (d *Dispatcher) Notify(ctx context.Context, user model.User, title, description, screen, screenID string) (model.Notification, Result, error) {
	n, err := d.Store.CreateNotification(ctx, model.Notification{
		UserID:      user.ID,
		Screen:      screen,
		ScreenID:    screenID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return model.Notification{}, Result{}, err
	}

	res := d.Deliver(ctx, user.FCMTokens, n)
	return n, res, nil
}

// Deliver pushes an already-persisted notification to the given tokens.
// Safe to call after the owning transaction has committed; all failures are
// swallowed here.
func (d *Dispatcher) Deliver(ctx context.Context, tokens []string, n model.Notification) Result {
	if len(tokens) == 0 || d.Gateway == nil {
		return Result{Status: "skipped"}
	}

	data := map[string]string{
		"screen":      n.Screen,
		"screen_id":   n.ScreenID,
		"title":       n.Title,
		"description": n.Description,
		"created_at":  n.CreatedAt.UTC().Format(time.RFC3339),
	}

	res, err := d.Gateway.SendMulticast(ctx, tokens, n.Title, n.Description, data)
	if err != nil {
		log.Printf("push delivery failed for user %s (%d tokens): %v", n.UserID, len(tokens), err)
		metrics.PushFailedTotal.Add(float64(len(tokens)))
		return Result{Status: "error", FailureCount: len(tokens), Error: err.Error()}
	}

	metrics.PushSentTotal.Add(float64(res.SuccessCount))
	metrics.PushFailedTotal.Add(float64(res.FailureCount))
	for _, r := range res.Responses {
		if !r.Success {
			log.Printf("push delivery failed for user %s token %s: %s", n.UserID, truncateToken(r.Token), r.Error)
		}
	}
	res.Status = "success"
	return res
}

// ScreenIDFor renders an entity id the way the mobile payload expects it.
func ScreenIDFor(id uuid.UUID) string { return id.String() }

// ScreenIDForInt renders numeric screen ids (area pages).
func ScreenIDForInt(id int64) string { return strconv.FormatInt(id, 10) }

func truncateToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
