package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
)

var ErrOfficialNotFound = errors.New("official not found")

const officialColumns = `
	id, user_id, ST_AsText(area_range) as area_range,
	city, district, country, country_code, created_at, updated_at
`

func scanOfficial(row pgx.Row) (model.Official, error) {
	var o model.Official
	var areaWKT string
	var city, district, country string

	err := row.Scan(
		&o.ID, &o.UserID, &areaWKT,
		&city, &district, &country, &o.CountryCode,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return model.Official{}, ErrOfficialNotFound
	}
	if err != nil {
		return model.Official{}, err
	}

	poly, err := geo.ParsePolygonWKT(areaWKT)
	if err != nil {
		return model.Official{}, fmt.Errorf("parsing official area: %w", err)
	}
	o.AreaRange = poly
	if len(poly.Rings) > 0 {
		o.Area = poly.Rings[0]
	}
	if city != "" {
		o.CityName = &city
	}
	if district != "" {
		o.DistrictName = &district
	}
	if country != "" {
		o.CountryName = &country
	}
	return o, nil
}

func scanOfficials(rows pgx.Rows) ([]model.Official, error) {
	defer rows.Close()

	var officials []model.Official
	for rows.Next() {
		o, err := scanOfficial(rows)
		if err != nil {
			return nil, err
		}
		officials = append(officials, o)
	}
	return officials, rows.Err()
}

// coveringOfficials returns the officials whose jurisdiction polygon covers
// the point. ST_Covers is boundary-inclusive, matching the assignment rule.
func coveringOfficials(ctx context.Context, q Querier, pt geo.Point) ([]model.Official, error) {
	query := `
        SELECT ` + officialColumns + `
        FROM officials
        WHERE ST_Covers(area_range, ST_SetSRID(ST_MakePoint($1, $2), 4326))
    `
	rows, err := q.Query(ctx, query, pt.Lon, pt.Lat)
	if err != nil {
		return nil, fmt.Errorf("querying covering officials: %w", err)
	}
	return scanOfficials(rows)
}

// CoveringOfficials is the pool-backed variant used outside transactions.
func (api *API) CoveringOfficials(ctx context.Context, pt geo.Point) ([]model.Official, error) {
	return coveringOfficials(ctx, api.DB, pt)
}

// saveOfficial upserts the official record keyed by user. A changed polygon
// replaces the stored one.
func saveOfficial(ctx context.Context, q Querier, o model.Official) (model.Official, error) {
	query := `
        INSERT INTO officials (user_id, area_range, city, district, country, country_code)
        VALUES ($1, ST_SetSRID(ST_GeomFromText($2), 4326), $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET
            area_range = EXCLUDED.area_range,
            city = EXCLUDED.city,
            district = EXCLUDED.district,
            country = EXCLUDED.country,
            country_code = EXCLUDED.country_code,
            updated_at = NOW()
        RETURNING ` + officialColumns
	city, district, country := "", "", ""
	if o.CityName != nil {
		city = *o.CityName
	}
	if o.DistrictName != nil {
		district = *o.DistrictName
	}
	if o.CountryName != nil {
		country = *o.CountryName
	}
	return scanOfficial(q.QueryRow(ctx, query,
		o.UserID, o.AreaRange.WKT(), city, district, country, o.CountryCode,
	))
}

// resyncOfficialIssues recomputes the official's assigned-issue set from
// scratch against the stored polygon. Called whenever the polygon changes so
// stale assignments never linger.
func resyncOfficialIssues(ctx context.Context, q Querier, officialID uuid.UUID) (int, error) {
	if _, err := q.Exec(ctx, `DELETE FROM official_issues WHERE official_id = $1`, officialID); err != nil {
		return 0, fmt.Errorf("clearing official assignments: %w", err)
	}

	query := `
        INSERT INTO official_issues (official_id, issue_id)
        SELECT $1, i.id
        FROM issues i, officials o
        WHERE o.id = $1
        AND i.status NOT IN ('rejected', 'solved')
        AND ST_Covers(o.area_range, i.location::geometry)
    `
	tag, err := q.Exec(ctx, query, officialID)
	if err != nil {
		return 0, fmt.Errorf("rebuilding official assignments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// deleteOfficial removes the official record for a user. The assignment rows
// go with it through the cascade.
func deleteOfficial(ctx context.Context, q Querier, userID uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM officials WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOfficialNotFound
	}
	return nil
}

// GetOfficialByUserIDRepo fetches the official record for a user, with its
// current assigned-issue ids.
func (api *API) GetOfficialByUserIDRepo(ctx context.Context, userID uuid.UUID) (model.Official, error) {
	query := `SELECT ` + officialColumns + ` FROM officials WHERE user_id = $1`
	o, err := scanOfficial(api.DB.QueryRow(ctx, query, userID))
	if err != nil {
		return model.Official{}, err
	}

	rows, err := api.DB.Query(ctx, `SELECT issue_id FROM official_issues WHERE official_id = $1`, o.ID)
	if err != nil {
		return model.Official{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return model.Official{}, err
		}
		o.AssignedIssues = append(o.AssignedIssues, id)
	}
	return o, rows.Err()
}

// GetOfficialIssuesRepo retrieves the issues assigned to an official, newest
// first.
func (api *API) GetOfficialIssuesRepo(ctx context.Context, officialID uuid.UUID) ([]model.Issue, error) {
	query := `
        SELECT
            i.id, i.user_id, i.title, i.description, i.categories, i.status,
            ST_Y(i.location::geometry) as latitude,
            ST_X(i.location::geometry) as longitude,
            i.images, i.is_anonymous, i.area_id, i.likes_count, i.comments_count,
            i.created_at, i.updated_at
        FROM issues i
        JOIN official_issues oi ON oi.issue_id = i.id
        WHERE oi.official_id = $1
        ORDER BY i.created_at DESC
    `
	rows, err := api.DB.Query(ctx, query, officialID)
	if err != nil {
		return nil, err
	}
	return scanIssues(rows)
}
