package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/util"
	"github.com/reportit/reportit_api/util/tracing"
	"github.com/reportit/reportit_api/util/values"
)

func (api *API) OfficialRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)

		r.Group(func(r chi.Router) {
			r.Use(api.RequireRole(model.RoleAdmin))
			r.Method(http.MethodPost, "/", Handler(api.SaveOfficial))
			r.Method(http.MethodGet, "/{userID}", Handler(api.GetOfficialByUserID))
			r.Method(http.MethodDelete, "/{userID}", Handler(api.DeleteOfficial))
			r.Method(http.MethodGet, "/{userID}/issues", Handler(api.GetOfficialIssues))
		})

		r.Group(func(r chi.Router) {
			r.Use(api.RequireRole(model.RoleOfficial, model.RoleAdmin))
			r.Method(http.MethodGet, "/me", Handler(api.GetMyOfficial))
			r.Method(http.MethodGet, "/me/issues", Handler(api.GetMyOfficialIssues))
		})
	})

	return mux
}

func (api *API) SaveOfficial(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.SaveOfficialRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	official, status, message, err := api.SaveOfficialHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       official,
	}
}

func (api *API) GetOfficialByUserID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	official, err := api.GetOfficialByUserIDRepo(r.Context(), userID)
	if err != nil {
		if err == ErrOfficialNotFound {
			return respondWithError(err, "official not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to fetch official", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Official fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       official,
	}
}

func (api *API) GetOfficialIssues(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	official, err := api.GetOfficialByUserIDRepo(r.Context(), userID)
	if err != nil {
		if err == ErrOfficialNotFound {
			return respondWithError(err, "official not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to fetch official", values.Error, &tc)
	}

	issues, err := api.GetOfficialIssuesRepo(r.Context(), official.ID)
	if err != nil {
		return respondWithError(err, "failed to fetch assigned issues", values.Error, &tc)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return &ServerResponse{
		Message:    "Assigned issues fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       issues,
	}
}

func (api *API) DeleteOfficial(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	status, message, err := api.DeleteOfficialHelper(r.Context(), userID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func (api *API) GetMyOfficial(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	official, err := api.GetOfficialByUserIDRepo(r.Context(), userID)
	if err != nil {
		if err == ErrOfficialNotFound {
			return respondWithError(err, "official not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to fetch official", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Official fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       official,
	}
}

func (api *API) GetMyOfficialIssues(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	official, err := api.GetOfficialByUserIDRepo(r.Context(), userID)
	if err != nil {
		if err == ErrOfficialNotFound {
			return respondWithError(err, "official not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to fetch official", values.Error, &tc)
	}

	issues, err := api.GetOfficialIssuesRepo(r.Context(), official.ID)
	if err != nil {
		return respondWithError(err, "failed to fetch assigned issues", values.Error, &tc)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return &ServerResponse{
		Message:    "Assigned issues fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       issues,
	}
}
