package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lucsky/cuid"
)

// Paths the visit counter ignores.
var uncountedPrefixes = []string{"/admin", "/static", "/metrics", "/ws"}

// RequestTracing handles the request tracing context
func RequestTracing(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestSource := r.Header.Get(values.HeaderRequestSource)
		if requestSource == "" {
			errM := errors.New("X-Request-Source is empty")

			writeErrorResponse(w, errM, values.BadRequestBody, errM.Error())
			return
		}

		requestID := r.Header.Get(values.HeaderRequestID)
		if requestID == "" {
			requestID = cuid.New()
		}
		w.Header().Set(values.HeaderRequestID, requestID)

		tracingContext := tracing.Context{
			RequestID:     requestID,
			RequestSource: requestSource,
		}

		ctx = context.WithValue(ctx, values.ContextTracingKey, tracingContext)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

// RequestLogger logs one line per request.
func (api *API) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		api.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", ww.Header().Get(values.HeaderRequestID),
		)
	})
}

// CountVisits records a page view for today. A failure to count never fails the request.
func (api *API) CountVisits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if countable(r.URL.Path) {
			if err := api.Deps.Visits.Record(r.Context()); err != nil {
				api.Logger.Warn("failed to record visit", "error", err, "path", r.URL.Path)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func countable(path string) bool {
	for _, prefix := range uncountedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// RequireLogin accepts a bearer token, or a token query parameter for websocket clients.
func (api *API) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeErrorResponse(w, errors.New(values.NotAuthorised), values.NotAuthorised, "not-authorized")
			return
		}

		claims, err := api.verifyToken(token)
		if err != nil {
			if errors.Is(err, errTokenExpired) {
				writeErrorResponse(w, err, values.TokenExpired, "token-expired")
				return
			}
			writeErrorResponse(w, err, values.NotAuthorised, "invalid-token")
			return
		}

		userID, err := util.StringToUUID(claims.UserID)
		if err != nil {
			writeErrorResponse(w, err, values.NotAuthorised, "invalid-token")
			return
		}

		dbCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := api.Deps.Accounts.ActiveUser(dbCtx, userID)
		if err != nil {
			writeErrorResponse(w, err, values.NotAuthorised, "user-not-found")
			return
		}

		next.ServeHTTP(w, r.WithContext(util.WithUserID(r.Context(), user.ID)))
	})
}

func bearerToken(r *http.Request) string {
	authorization := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authorization) == 2 && authorization[0] == "Bearer" {
		return authorization[1]
	}
	return r.URL.Query().Get("token")
}
