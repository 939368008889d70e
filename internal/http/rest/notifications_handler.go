package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/util"
	"github.com/reportit/reportit_api/util/tracing"
	"github.com/reportit/reportit_api/util/values"
)

func (api *API) NotificationRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/", Handler(api.GetMyNotifications))
		r.Method(http.MethodPut, "/{notificationID}/read", Handler(api.MarkNotificationRead))
	})

	return mux
}

func (api *API) GetMyNotifications(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}

	notifications, err := api.GetUserNotificationsRepo(r.Context(), userID, page, pageSize)
	if err != nil {
		return respondWithError(err, "failed to fetch notifications", values.Error, &tc)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	return &ServerResponse{
		Message:    "Notifications fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       notifications,
	}
}

func (api *API) MarkNotificationRead(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	notificationID, err := util.StringToUUID(chi.URLParam(r, "notificationID"))
	if err != nil {
		return respondWithError(err, "invalid notification ID", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	if err := api.MarkNotificationReadRepo(r.Context(), userID, notificationID); err != nil {
		if err == ErrNotificationNotFound {
			return respondWithError(err, "notification not found", values.NotFound, &tc)
		}
		return respondWithError(err, "failed to mark notification read", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Notification marked as read",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}
