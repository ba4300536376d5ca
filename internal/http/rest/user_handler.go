package rest

import (
	"net/http"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) UserRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Route("/", func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/profile", Handler(api.GetProfile))
		r.Method(http.MethodPut, "/profile", Handler(api.UpdateProfile))
	})

	return mux
}

func (api *API) GetProfile(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	profile, err := api.Deps.Accounts.GetProfile(r.Context(), userID)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("User profile retrieved successfully", values.Success, profile)
}

func (api *API) UpdateProfile(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	var req model.UpdateProfileRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "Enter a valid username, email address and phone number.", values.BadRequestBody, &tc)
	}

	profile, err := api.Deps.Accounts.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your account has been updated successfully!", values.Success, profile)
}
