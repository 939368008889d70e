package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/util"
	"github.com/reportit/reportit_api/util/tracing"
	"github.com/reportit/reportit_api/util/values"
)

func (api *API) UserRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/me", Handler(api.GetMe))
		r.Method(http.MethodPost, "/me/fcm-tokens", Handler(api.AddFCMToken))
		r.Method(http.MethodPut, "/me/location", Handler(api.SetMyLocation))
	})

	return mux
}

func (api *API) GetMe(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	user, err := api.GetUserByID(r.Context(), userID.String())
	if err != nil {
		return respondWithError(err, "failed to fetch user", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "User fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       user,
	}
}

func (api *API) AddFCMToken(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	if err := api.RegisterFCMToken(r.Context(), userID, req.Token); err != nil {
		return respondWithError(err, "failed to register device token", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Device token registered",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

func (api *API) SetMyLocation(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req struct {
		Latitude  float64 `json:"latitude" validate:"latitude"`
		Longitude float64 `json:"longitude" validate:"longitude"`
	}
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	if err := api.UpdateUserLocation(r.Context(), userID, geo.Point{Lat: req.Latitude, Lon: req.Longitude}); err != nil {
		return respondWithError(err, "failed to update location", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Location updated",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}
