package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) MessageRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Route("/", func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/{id}/approve", Handler(api.ApproveContact))
	})

	return mux
}

func (api *API) ProposeContact(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, listingID, resp := listingRequestIDs(r, &tc)
	if resp != nil {
		return resp
	}

	var req model.ProposeContactRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "phone numbers are at most 15 characters", values.BadRequestBody, &tc)
	}

	message, err := api.Deps.Contacts.ProposeContact(r.Context(), listingID, userID, req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your message has been sent successfully!", values.Created, message)
}

func (api *API) ApproveContact(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}
	messageID, err := util.StringToUUID(chi.URLParam(r, "id"))
	if err != nil {
		return respondWithError(err, "message not found", values.NotFound, &tc)
	}

	// The body is optional since recipient_phone may be omitted.
	var req model.ApproveContactRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "phone numbers are at most 15 characters", values.BadRequestBody, &tc)
	}

	message, err := api.Deps.Contacts.ApproveContact(r.Context(), messageID, userID, req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("You have approved the offer!", values.Success, message)
}
