package rest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/util"
	"github.com/reportit/reportit_api/util/values"
)

// SaveOfficialHelper registers or updates an official: resolves the
// jurisdiction polygon, promotes the user's role, and rebuilds the
// assigned-issue set against the new polygon, all in one transaction.
func (api *API) SaveOfficialHelper(ctx context.Context, req model.SaveOfficialRequest) (model.Official, string, string, error) {
	polygon, err := api.resolveOfficialArea(ctx, req)
	if err != nil {
		return model.Official{}, values.BadRequestBody, "Unable to resolve jurisdiction area", err
	}
	if err := polygon.Validate(); err != nil {
		return model.Official{}, values.BadRequestBody, "Invalid jurisdiction area", err
	}

	official := model.Official{
		UserID:      req.UserID,
		AreaRange:   polygon,
		CountryCode: model.CountryCodeFor(req.CountryName),
	}
	if req.CityName != "" {
		official.CityName = &req.CityName
	}
	if req.DistrictName != "" {
		official.DistrictName = &req.DistrictName
	}
	if req.CountryName != "" {
		official.CountryName = &req.CountryName
	}

	var saved model.Official
	err = api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		saved, txErr = saveOfficial(ctx, tx, official)
		if txErr != nil {
			return txErr
		}
		if txErr = api.PromoteUserRole(ctx, tx, req.UserID, model.RoleOfficial); txErr != nil {
			return txErr
		}
		_, txErr = resyncOfficialIssues(ctx, tx, saved.ID)
		return txErr
	})
	if err != nil {
		return model.Official{}, values.Error, "Failed to save official", err
	}

	// Inform the user of their new role; delivery is best effort.
	user, err := api.GetUserByID(ctx, req.UserID.String())
	if err == nil {
		_, _, _ = api.Push.Notify(ctx, user,
			"You have been registered as an official",
			"Issues inside your jurisdiction will be assigned to you",
			values.ScreenOfficial, saved.ID.String())
	}

	return saved, values.Created, "Official saved successfully", nil
}

// DeleteOfficialHelper revokes an official registration: the record and its
// assignments are removed and the user drops back to a regular role, all in
// one transaction.
func (api *API) DeleteOfficialHelper(ctx context.Context, userID uuid.UUID) (string, string, error) {
	err := api.Deps.DB.RunInTx(ctx, func(tx pgx.Tx) error {
		if txErr := deleteOfficial(ctx, tx, userID); txErr != nil {
			return txErr
		}
		return api.PromoteUserRole(ctx, tx, userID, model.RoleUser)
	})
	if err != nil {
		if err == ErrOfficialNotFound {
			return values.NotFound, "Official not found", err
		}
		return values.Error, "Failed to delete official", err
	}
	return values.Success, "Official deleted successfully", nil
}

// resolveOfficialArea prefers the explicit polyline boundary; otherwise the
// named district is looked up through the geocoder and its first polygon used.
func (api *API) resolveOfficialArea(ctx context.Context, req model.SaveOfficialRequest) (geo.Polygon, error) {
	if req.AreaPolyline != "" {
		ring, err := util.RingFromPolyline(req.AreaPolyline)
		if err != nil {
			return geo.Polygon{}, err
		}
		return geo.NewPolygon(ring), nil
	}

	name := req.DistrictName
	if name == "" {
		name = req.CityName
	}
	if name == "" {
		return geo.Polygon{}, &model.ValidationError{
			Field:   "area_polyline",
			Message: "either a boundary polyline or a district/city name is required",
		}
	}

	boundary, err := api.Deps.Geocoder.FetchBoundary(ctx, name)
	if err != nil {
		return geo.Polygon{}, err
	}
	if len(boundary.Geometry) == 0 {
		return geo.Polygon{}, &model.ValidationError{Field: "district_name", Message: "no boundary found"}
	}
	return boundary.Geometry[0], nil
}
