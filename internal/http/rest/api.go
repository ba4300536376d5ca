package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwise1/upzunction/config"
	deps "github.com/bwise1/upzunction/internal/debs"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	Logger *logger.Logger
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
	mux.Use(middleware.Recoverer)
	mux.Use(api.RequestLogger)

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(api.Deps.Registry, promhttp.HandlerOpts{}))
	mux.With(api.RequireLogin).Get("/ws", api.ServeWebsocket)

	mux.Group(func(r chi.Router) {
		r.Use(RequestTracing)
		r.Use(api.CountVisits)

		r.Method(http.MethodGet, "/", Handler(api.Feed))
		r.Method(http.MethodGet, "/locations", Handler(api.Locations))
		r.Mount("/auth", api.AuthRoutes())
		r.Mount("/listings", api.ListingRoutes())
		r.Mount("/messages", api.MessageRoutes())
		r.Mount("/users", api.UserRoutes())
		r.With(api.RequireLogin).Method(http.MethodGet, "/dashboard", Handler(api.Dashboard))
	})

	return mux
}

func (api *API) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	if api.Server == nil {
		return nil
	}
	return api.Server.Shutdown(ctx)
}
