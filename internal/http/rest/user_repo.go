package rest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	id, email, username, role, verified, fcm_tokens, profile_image,
	ST_Y(location::geometry) as latitude, ST_X(location::geometry) as longitude,
	created_at, updated_at
`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var tokensJSON []byte
	var lat, lon *float64

	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.Role, &user.Verified,
		&tokensJSON, &user.ProfileImage, &lat, &lon,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}

	if len(tokensJSON) > 0 {
		if err := json.Unmarshal(tokensJSON, &user.FCMTokens); err != nil {
			return model.User{}, err
		}
	}
	if lat != nil && lon != nil {
		user.Location = &geo.Point{Lat: *lat, Lon: *lon}
	}
	return user, nil
}

func (api *API) GetUserByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(api.DB.QueryRow(ctx, query, id))
}

// RegisterFCMToken appends a device token to the user's token set. Tokens are
// kept unique; re-registering an existing token is a no-op.
func (api *API) RegisterFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		UPDATE users
		SET fcm_tokens = CASE
			WHEN fcm_tokens @> to_jsonb(ARRAY[$2::text]) THEN fcm_tokens
			ELSE fcm_tokens || to_jsonb(ARRAY[$2::text])
		END,
		updated_at = NOW()
		WHERE id = $1
	`
	_, err := api.DB.Exec(ctx, query, userID, token)
	return err
}

// RemoveFCMToken drops a device token, typically after the push gateway
// reports it unregistered.
func (api *API) RemoveFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		UPDATE users
		SET fcm_tokens = fcm_tokens - $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := api.DB.Exec(ctx, query, userID, token)
	return err
}

// UpdateUserLocation stores the user's last known position, which feeds the
// nearby-resident alert radius.
func (api *API) UpdateUserLocation(ctx context.Context, userID uuid.UUID, pt geo.Point) error {
	query := `
		UPDATE users
		SET location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := api.DB.Exec(ctx, query, userID, pt.Lon, pt.Lat)
	return err
}

// PromoteUserRole raises the user to the given role. Demotions go through the
// same statement; callers gate who may do this.
func (api *API) PromoteUserRole(ctx context.Context, q Querier, userID uuid.UUID, role model.Role) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	tag, err := q.Exec(ctx, query, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
