package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reportit/reportit_api/config"
	"github.com/reportit/reportit_api/internal/assign"
	deps "github.com/reportit/reportit_api/internal/debs"
	"github.com/reportit/reportit_api/internal/dedupe"
	"github.com/reportit/reportit_api/internal/metrics"
	"github.com/reportit/reportit_api/internal/push"
	"github.com/reportit/reportit_api/util/values"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies
	DB     *pgxpool.Pool
	Push   *push.Dispatcher
	Dedupe *dedupe.Detector
}

// New wires the API against its dependencies. The API itself is the
// persistence adapter for the dedupe detector and the push dispatcher;
// assignment engines are built per status-change transaction.
func New(cfg *config.Config, d *deps.Dependencies) *API {
	api := &API{
		Config: cfg,
		Deps:   d,
		DB:     d.Pool(),
	}
	api.Push = push.NewDispatcher(api, d.PushGateway)
	api.Dedupe = dedupe.New(api, cfg.DuplicateRadiusM)
	return api
}

// assigner builds the assignment engine bound to the given transactional
// store so assignment and notification rows commit with the status change.
func (api *API) assigner(store *txStore) *assign.Engine {
	return assign.New(store, store, store, store, api.Config.NearbyAlertRadiusM)
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()

	mux.Get("/health",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		},
	)
	mux.Handle("/metrics", metrics.Handler())
	mux.Get("/ws", api.Deps.WebSocket.HandleConnections)

	mux.Group(func(r chi.Router) {
		r.Use(RequestTracing)
		r.Mount("/issues", api.IssueRoutes())
		r.Mount("/users", api.UserRoutes())
		r.Mount("/officials", api.OfficialRoutes())
		r.Mount("/notifications", api.NotificationRoutes())
	})

	return mux
}

func (a *API) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	err := a.Server.Shutdown(ctx)
	if err != nil {
		return err
	}
	return nil
}
