package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/likes"
	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/internal/status"
)

// Querier is the subset of pgx shared by the pool and transactions, so the
// same queries serve both.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var (
	ErrIssueNotFound   = errors.New("issue not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUpdateFailed    = errors.New("failed to update issue")
)

const issueColumns = `
	id, user_id, title, description, categories, status,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	images, is_anonymous, area_id, likes_count, comments_count,
	created_at, updated_at
`

func scanIssue(row pgx.Row) (model.Issue, error) {
	var issue model.Issue
	err := row.Scan(
		&issue.ID, &issue.UserID, &issue.Title, &issue.Description,
		&issue.Categories, &issue.Status, &issue.Latitude, &issue.Longitude,
		&issue.Images, &issue.IsAnonymous, &issue.AreaID,
		&issue.LikesCount, &issue.CommentsCount,
		&issue.CreatedAt, &issue.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return model.Issue{}, ErrIssueNotFound
	}
	return issue, err
}

func scanIssues(rows pgx.Rows) ([]model.Issue, error) {
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// CreateIssueRepo inserts a new issue in its initial status.
func (api *API) CreateIssueRepo(ctx context.Context, req model.CreateIssueRequest) (model.Issue, error) {
	query := `
        INSERT INTO issues (
            user_id, title, description, categories,
            location, images, is_anonymous
        ) VALUES (
            $1, $2, $3, $4,
            ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
            COALESCE($7, '{}'), $8
        ) RETURNING ` + issueColumns
	return scanIssue(api.DB.QueryRow(ctx, query,
		req.UserID, req.Title, req.Description, req.Categories,
		req.Longitude, req.Latitude, req.Images, req.IsAnonymous,
	))
}

// GetIssueByIDRepo retrieves an issue by ID.
func (api *API) GetIssueByIDRepo(ctx context.Context, id string) (model.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	return scanIssue(api.DB.QueryRow(ctx, query, id))
}

// getIssueForUpdate locks the issue row for the remainder of the transaction
// so concurrent status changes serialize on it.
func getIssueForUpdate(ctx context.Context, q Querier, id uuid.UUID) (model.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1 FOR UPDATE`
	return scanIssue(q.QueryRow(ctx, query, id))
}

func updateIssueStatus(ctx context.Context, q Querier, id uuid.UUID, to status.Status) error {
	query := `UPDATE issues SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := q.Exec(ctx, query, id, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUpdateFailed
	}
	return nil
}

// GetNearbyIssuesRepo retrieves issues within a radius, nearest first.
func (api *API) GetNearbyIssuesRepo(ctx context.Context, params model.NearbyIssuesParams) ([]model.Issue, error) {
	baseQuery := `
        SELECT ` + issueColumns + `,
            ST_Distance(location, ST_MakePoint($1, $2)::geography) as distance
        FROM issues
        WHERE ST_DWithin(
            location,
            ST_MakePoint($1, $2)::geography,
            $3
        )
    `

	args := []interface{}{
		params.Longitude, // $1
		params.Latitude,  // $2
		params.Radius,    // $3
	}
	argCount := 3

	whereClause := ""
	if len(params.Statuses) > 0 {
		argCount++
		whereClause += fmt.Sprintf(" AND status = ANY($%d)", argCount)
		args = append(args, params.Statuses)
	}

	query := fmt.Sprintf(`
        %s %s
        ORDER BY distance
        LIMIT $%d OFFSET $%d
    `, baseQuery, whereClause, argCount+1, argCount+2)

	args = append(args,
		params.PageSize,
		(params.Page-1)*params.PageSize,
	)

	rows, err := api.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nearby issues: %w", err)
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		var issue model.Issue
		var distance float64
		err := rows.Scan(
			&issue.ID, &issue.UserID, &issue.Title, &issue.Description,
			&issue.Categories, &issue.Status, &issue.Latitude, &issue.Longitude,
			&issue.Images, &issue.IsAnonymous, &issue.AreaID,
			&issue.LikesCount, &issue.CommentsCount,
			&issue.CreatedAt, &issue.UpdatedAt, &distance,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// IssuesNear returns duplicate candidates around a point: issues that are
// still live (not rejected or solved) and share a category with the proposed
// report. Satisfies the duplicate detector's finder.
func (api *API) IssuesNear(ctx context.Context, pt geo.Point, radiusM float64, categories []string) ([]model.Issue, error) {
	query := `
        SELECT ` + issueColumns + `
        FROM issues
        WHERE ST_DWithin(
            location,
            ST_MakePoint($1, $2)::geography,
            $3
        )
        AND status NOT IN ('rejected', 'solved')
        AND categories && $4
    `
	rows, err := api.DB.Query(ctx, query, pt.Lon, pt.Lat, radiusM, categories)
	if err != nil {
		return nil, fmt.Errorf("querying duplicate candidates: %w", err)
	}
	return scanIssues(rows)
}

// ListIssuesRepo retrieves issues newest first, optionally filtered by
// status.
func (api *API) ListIssuesRepo(ctx context.Context, statuses []string, page, pageSize int) ([]model.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues`
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, statuses)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := api.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanIssues(rows)
}

// DeleteIssueRepo removes an issue; likes, comments and assignments cascade.
func (api *API) DeleteIssueRepo(ctx context.Context, issueID uuid.UUID) error {
	tag, err := api.DB.Exec(ctx, `DELETE FROM issues WHERE id = $1`, issueID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIssueNotFound
	}
	return nil
}

// GetUserIssuesRepo retrieves all issues filed by a user, newest first.
func (api *API) GetUserIssuesRepo(ctx context.Context, userID uuid.UUID) ([]model.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := api.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanIssues(rows)
}

// issueLikes binds the like toggle to one issue's rows and counter within a
// transaction. The GREATEST clamp keeps the counter non-negative even if
// rows and counter have drifted.
type issueLikes struct {
	tx      pgx.Tx
	issueID uuid.UUID
}

func (s issueLikes) Remove(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := s.tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND issue_id = $2`, userID, s.issueID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s issueLikes) Add(ctx context.Context, userID uuid.UUID) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO likes (user_id, issue_id) VALUES ($1, $2)`, userID, s.issueID)
	return err
}

func (s issueLikes) AdjustCount(ctx context.Context, delta int) (int, error) {
	var count int
	err := s.tx.QueryRow(ctx,
		`UPDATE issues SET likes_count = GREATEST(likes_count + $2, 0) WHERE id = $1 RETURNING likes_count`,
		s.issueID, delta).Scan(&count)
	return count, err
}

// ToggleLikeRepo flips the caller's like on an issue inside one transaction.
// Returns the toggle result with the updated counter and the issue owner for
// notification.
func (api *API) ToggleLikeRepo(ctx context.Context, tx pgx.Tx, issueID, userID uuid.UUID) (likes.Result, uuid.UUID, error) {
	var ownerID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT user_id FROM issues WHERE id = $1 FOR UPDATE`, issueID).Scan(&ownerID)
	if err == pgx.ErrNoRows {
		return likes.Result{}, uuid.Nil, ErrIssueNotFound
	}
	if err != nil {
		return likes.Result{}, uuid.Nil, err
	}

	res, err := likes.Toggle(ctx, issueLikes{tx: tx, issueID: issueID}, userID)
	return res, ownerID, err
}

// commentLikes is the comment-side counterpart of issueLikes.
type commentLikes struct {
	tx        pgx.Tx
	commentID uuid.UUID
}

func (s commentLikes) Remove(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := s.tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND comment_id = $2`, userID, s.commentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s commentLikes) Add(ctx context.Context, userID uuid.UUID) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO likes (user_id, comment_id) VALUES ($1, $2)`, userID, s.commentID)
	return err
}

func (s commentLikes) AdjustCount(ctx context.Context, delta int) (int, error) {
	var count int
	err := s.tx.QueryRow(ctx,
		`UPDATE comments SET likes_count = GREATEST(likes_count + $2, 0) WHERE id = $1 RETURNING likes_count`,
		s.commentID, delta).Scan(&count)
	return count, err
}

// ToggleCommentLikeRepo flips the caller's like on a comment, mirroring the
// issue toggle.
func (api *API) ToggleCommentLikeRepo(ctx context.Context, tx pgx.Tx, commentID, userID uuid.UUID) (likes.Result, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, commentID).Scan(&exists)
	if err != nil {
		return likes.Result{}, err
	}
	if !exists {
		return likes.Result{}, ErrCommentNotFound
	}

	return likes.Toggle(ctx, commentLikes{tx: tx, commentID: commentID}, userID)
}

// AddCommentRepo inserts a comment and bumps the issue's comment counter.
func (api *API) AddCommentRepo(ctx context.Context, tx pgx.Tx, comment model.Comment) (model.Comment, error) {
	query := `
        INSERT INTO comments (issue_id, user_id, parent_id, reply_to, content)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := tx.QueryRow(ctx, query, comment.IssueID, comment.UserID, comment.ParentID, comment.ReplyTo, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return model.Comment{}, err
	}

	_, err = tx.Exec(ctx, `UPDATE issues SET comments_count = comments_count + 1 WHERE id = $1`, comment.IssueID)
	return comment, err
}

// GetCommentsRepo retrieves the comments on an issue, oldest first.
func (api *API) GetCommentsRepo(ctx context.Context, issueID string) ([]model.Comment, error) {
	query := `
        SELECT id, issue_id, user_id, parent_id, reply_to, content,
               likes_count, is_edited, created_at, updated_at
        FROM comments
        WHERE issue_id = $1
        ORDER BY created_at
    `
	rows, err := api.DB.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		err := rows.Scan(&c.ID, &c.IssueID, &c.UserID, &c.ParentID, &c.ReplyTo,
			&c.Content, &c.LikesCount, &c.IsEdited, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// FindAreaContaining returns the id of the administrative area whose boundary
// covers the point, if one is loaded.
func (api *API) FindAreaContaining(ctx context.Context, pt geo.Point) (*int64, error) {
	query := `
        SELECT id FROM area_locations
        WHERE ST_Covers(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326))
        LIMIT 1
    `
	var id int64
	err := api.DB.QueryRow(ctx, query, pt.Lon, pt.Lat).Scan(&id)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// UpsertAreaLocation stores a named boundary fetched from the geocoder and
// returns its id.
func (api *API) UpsertAreaLocation(ctx context.Context, area model.AreaLocation) (int64, error) {
	query := `
        INSERT INTO area_locations (name, city, country, boundary)
        VALUES ($1, $2, $3, ST_SetSRID(ST_GeomFromText($4), 4326))
        ON CONFLICT (name) DO UPDATE SET boundary = EXCLUDED.boundary
        RETURNING id
    `
	var id int64
	err := api.DB.QueryRow(ctx, query, area.Name, area.City, area.Country, area.Boundary.WKT()).Scan(&id)
	return id, err
}

// SetIssueArea tags the issue with its containing administrative area.
func (api *API) SetIssueArea(ctx context.Context, issueID uuid.UUID, areaID int64) error {
	_, err := api.DB.Exec(ctx, `UPDATE issues SET area_id = $2 WHERE id = $1`, issueID, areaID)
	return err
}
