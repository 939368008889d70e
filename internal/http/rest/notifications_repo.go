package rest

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

func createNotification(ctx context.Context, q Querier, n model.Notification) (model.Notification, error) {
	query := `
        INSERT INTO notifications (user_id, screen, screen_id, title, description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := q.QueryRow(ctx, query, n.UserID, n.Screen, n.ScreenID, n.Title, n.Description).
		Scan(&n.ID, &n.CreatedAt)
	return n, err
}

// CreateNotification satisfies the push dispatcher's store.
func (api *API) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	return createNotification(ctx, api.DB, n)
}

// GetUserNotificationsRepo retrieves a user's notifications, newest first.
func (api *API) GetUserNotificationsRepo(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, screen, screen_id, title, description, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := api.DB.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Screen, &n.ScreenID, &n.Title, &n.Description, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationReadRepo marks one of the caller's notifications as read.
func (api *API) MarkNotificationReadRepo(ctx context.Context, userID, notificationID uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	tag, err := api.DB.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
