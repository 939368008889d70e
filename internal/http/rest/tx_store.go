package rest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/metrics"
	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/util/websockets"
)

// pendingNotification is a row written inside a transaction whose push
// delivery must wait for the commit.
type pendingNotification struct {
	userID uuid.UUID
	n      model.Notification
}

// txStore scopes the assignment engine's writes to one transaction. The
// notification rows it creates commit or roll back with the status change;
// push delivery is collected in pending and flushed after commit.
type txStore struct {
	tx      pgx.Tx
	api     *API
	pending []pendingNotification
}

func (api *API) newTxStore(tx pgx.Tx) *txStore {
	return &txStore{tx: tx, api: api}
}

func (s *txStore) CoveringOfficials(ctx context.Context, pt geo.Point) ([]model.Official, error) {
	return coveringOfficials(ctx, s.tx, pt)
}

func (s *txStore) UsersWithin(ctx context.Context, pt geo.Point, radiusM float64, exclude uuid.UUID) ([]model.User, error) {
	query := `
        SELECT id FROM users
        WHERE location IS NOT NULL
        AND id <> $3
        AND ST_DWithin(location, ST_MakePoint($1, $2)::geography, $4)
    `
	rows, err := s.tx.Query(ctx, query, pt.Lon, pt.Lat, exclude, radiusM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *txStore) AddAssignment(ctx context.Context, officialID, issueID uuid.UUID) error {
	query := `
        INSERT INTO official_issues (official_id, issue_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	tag, err := s.tx.Exec(ctx, query, officialID, issueID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		metrics.AssignmentsTotal.Inc()
	}
	return nil
}

func (s *txStore) Notify(ctx context.Context, userID uuid.UUID, title, description, screen, screenID string) error {
	n, err := createNotification(ctx, s.tx, model.Notification{
		UserID:      userID,
		Screen:      screen,
		ScreenID:    screenID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return err
	}
	s.pending = append(s.pending, pendingNotification{userID: userID, n: n})
	return nil
}

// assignedOfficialUsers returns the user ids of officials bound to the
// issue, for fan-out on status changes.
func (s *txStore) assignedOfficialUsers(ctx context.Context, issueID uuid.UUID) ([]uuid.UUID, error) {
	query := `
        SELECT o.user_id
        FROM officials o
        JOIN official_issues oi ON oi.official_id = o.id
        WHERE oi.issue_id = $1
    `
	rows, err := s.tx.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// flushNotifications delivers the queued pushes for rows that are now
// committed. Runs in its own goroutine; the request does not wait on the
// push gateway.
func (api *API) flushNotifications(pending []pendingNotification) {
	ctx := context.Background()
	for _, p := range pending {
		user, err := api.GetUserByID(ctx, p.userID.String())
		if err != nil {
			continue
		}
		api.Push.Deliver(ctx, user.FCMTokens, p.n)
		if api.Deps.WebSocket != nil {
			api.Deps.WebSocket.SendToUser(p.userID.String(), map[string]interface{}{
				"type":         websockets.MsgTypeNotification,
				"notification": p.n,
			})
		}
	}
}
