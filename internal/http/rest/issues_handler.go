package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/internal/status"
	"github.com/reportit/reportit_api/util"
	"github.com/reportit/reportit_api/util/tracing"
	"github.com/reportit/reportit_api/util/values"
)

func (api *API) IssueRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateIssue))
		r.Method(http.MethodGet, "/", Handler(api.ListIssues))
		r.Method(http.MethodGet, "/nearby", Handler(api.GetNearbyIssues))
		r.Method(http.MethodGet, "/my", Handler(api.GetMyIssues))
		r.Method(http.MethodPost, "/images", Handler(api.UploadIssueImage))

		r.Method(http.MethodGet, "/{issueID}", Handler(api.GetIssueByID))
		r.Method(http.MethodDelete, "/{issueID}", Handler(api.DeleteIssue))
		r.Method(http.MethodPatch, "/{issueID}/status", Handler(api.ChangeIssueStatus))
		r.Method(http.MethodPost, "/{issueID}/like", Handler(api.ToggleLike))
		r.Method(http.MethodPost, "/{issueID}/comments", Handler(api.CommentOnIssue))
		r.Method(http.MethodGet, "/{issueID}/comments", Handler(api.GetComments))
		r.Method(http.MethodPost, "/{issueID}/comments/{commentID}/like", Handler(api.ToggleCommentLike))
	})

	return mux
}

func (api *API) CreateIssue(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.CreateIssueRequest
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
	req.UserID = userID

	issue, respStatus, message, err := api.CreateIssueHelper(r.Context(), req)
	if err != nil {
		if respStatus == values.Conflict {
			// Surface the existing issue so the client can offer it instead.
			return &ServerResponse{
				Message:    message,
				Status:     respStatus,
				StatusCode: util.StatusCode(respStatus),
				Data:       issue,
			}
		}
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       issue,
	}
}

func (api *API) GetIssueByID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID := chi.URLParam(r, "issueID")

	issue, err := api.GetIssueByIDRepo(r.Context(), issueID)
	if err != nil {
		if err == ErrIssueNotFound {
			return respondWithError(err, "issue not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to fetch issue", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Issue fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       issue,
	}
}

func (api *API) GetNearbyIssues(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	longitude, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil {
		return respondWithError(err, "invalid longitude", values.BadRequestBody, &tc)
	}

	latitude, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil {
		return respondWithError(err, "invalid latitude", values.BadRequestBody, &tc)
	}

	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		radius = 1000 // Default radius in meters
	}

	statuses := r.URL.Query()["status"]
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil {
		pageSize = 10
	}

	params := model.NearbyIssuesParams{
		Latitude:  latitude,
		Longitude: longitude,
		Radius:    radius,
		Statuses:  statuses,
		Page:      page,
		PageSize:  pageSize,
	}

	issues, respStatus, message, err := api.GetNearbyIssuesHelper(r.Context(), params)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       issues,
	}
}

func (api *API) ListIssues(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	statuses := r.URL.Query()["status"]
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}

	issues, err := api.ListIssuesRepo(r.Context(), statuses, page, pageSize)
	if err != nil {
		return respondWithError(err, "failed to fetch issues", values.Error, &tc)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return &ServerResponse{
		Message:    "Issues fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       issues,
	}
}

func (api *API) GetMyIssues(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	issues, err := api.GetUserIssuesRepo(r.Context(), userID)
	if err != nil {
		return respondWithError(err, "failed to fetch issues", values.Error, &tc)
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	return &ServerResponse{
		Message:    "Issues fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       issues,
	}
}

func (api *API) ChangeIssueStatus(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID, err := util.StringToUUID(chi.URLParam(r, "issueID"))
	if err != nil {
		return respondWithError(err, "invalid issue ID", values.BadRequestBody, &tc)
	}

	var req model.ChangeStatusRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	target := status.Status(req.Status)
	if !status.Valid(target) {
		badStatus := &model.ValidationError{Field: "status", Message: "unknown status: " + req.Status}
		return respondWithError(badStatus, "unknown status", values.BadRequestBody, &tc)
	}

	actor, err := util.GetActorFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get actor from context", values.NotAuthorised, &tc)
	}

	issue, respStatus, message, err := api.ChangeIssueStatusHelper(r.Context(), actor, issueID, target)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       issue,
	}
}

func (api *API) DeleteIssue(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID, err := util.StringToUUID(chi.URLParam(r, "issueID"))
	if err != nil {
		return respondWithError(err, "invalid issue ID", values.BadRequestBody, &tc)
	}

	actor, err := util.GetActorFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get actor from context", values.NotAuthorised, &tc)
	}

	respStatus, message, err := api.DeleteIssueHelper(r.Context(), actor, issueID)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
	}
}

func (api *API) ToggleLike(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID, err := util.StringToUUID(chi.URLParam(r, "issueID"))
	if err != nil {
		return respondWithError(err, "invalid issue ID", values.BadRequestBody, &tc)
	}

	actor, err := util.GetActorFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get actor from context", values.NotAuthorised, &tc)
	}

	result, respStatus, message, err := api.ToggleLikeHelper(r.Context(), actor, issueID)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       result,
	}
}

func (api *API) ToggleCommentLike(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	commentID, err := util.StringToUUID(chi.URLParam(r, "commentID"))
	if err != nil {
		return respondWithError(err, "invalid comment ID", values.BadRequestBody, &tc)
	}

	actor, err := util.GetActorFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get actor from context", values.NotAuthorised, &tc)
	}

	result, respStatus, message, err := api.ToggleCommentLikeHelper(r.Context(), actor, commentID)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       result,
	}
}

func (api *API) CommentOnIssue(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID, err := util.StringToUUID(chi.URLParam(r, "issueID"))
	if err != nil {
		return respondWithError(err, "invalid issue ID", values.BadRequestBody, &tc)
	}

	var req model.CreateCommentRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	actor, err := util.GetActorFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get actor from context", values.NotAuthorised, &tc)
	}

	comment, respStatus, message, err := api.CommentOnIssueHelper(r.Context(), actor, issueID, req)
	if err != nil {
		return respondWithError(err, message, respStatus, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     respStatus,
		StatusCode: util.StatusCode(respStatus),
		Data:       comment,
	}
}

// UploadIssueImage pushes a picture to media storage and returns the hosted
// URL for the client to attach to its create request. Accepts a remote URL
// or a base64 data URI.
func (api *API) UploadIssueImage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req struct {
		Image string `json:"image" validate:"required"`
	}
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	imageURL, err := api.Deps.Cloudinary.UploadImage(r.Context(), req.Image, "issues")
	if err != nil {
		return respondWithError(err, "failed to upload image", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Image uploaded successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data: map[string]string{
			"url": imageURL,
		},
	}
}

func (api *API) GetComments(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	issueID := chi.URLParam(r, "issueID")

	comments, err := api.GetCommentsRepo(r.Context(), issueID)
	if err != nil {
		return respondWithError(err, "failed to get comments", values.Error, &tc)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	return &ServerResponse{
		Message:    "Comments retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       comments,
	}
}
