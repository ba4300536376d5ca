package rest

import (
	"net/http"
	"strconv"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (api *API) ListingRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Route("/", func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateListing))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetListing))
		r.Method(http.MethodPut, "/{id}", Handler(api.EditListing))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteListing))
		r.Method(http.MethodPost, "/{id}/deactivate", Handler(api.DeactivateListing))
		r.Method(http.MethodPost, "/{id}/messages", Handler(api.ProposeContact))
	})

	return mux
}

// Feed serves the public feed. ?location=<id> narrows it to one location.
func (api *API) Feed(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var locationID *int64
	if raw := r.URL.Query().Get("location"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondWithError(err, "location must be a numeric id", values.BadRequestBody, &tc)
		}
		locationID = &id
	}

	listings, err := api.Deps.Listings.ListVisible(r.Context(), locationID)
	if err != nil {
		return api.fail(err, &tc)
	}
	locations, err := api.Deps.Listings.Locations(r.Context())
	if err != nil {
		return api.fail(err, &tc)
	}

	return respond("Feed retrieved successfully", values.Success, model.FeedResponse{
		Listings:          listings,
		Locations:         locations,
		CurrentLocationID: locationID,
	})
}

func (api *API) Locations(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	locations, err := api.Deps.Listings.Locations(r.Context())
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Locations retrieved successfully", values.Success, locations)
}

func (api *API) CreateListing(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	var req model.ListingRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "title and description are required, phone numbers are at most 15 characters", values.BadRequestBody, &tc)
	}

	listing, err := api.Deps.Listings.Create(r.Context(), userID, req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your post '"+listing.Title+"' has been created!", values.Created, listing)
}

func (api *API) GetListing(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, listingID, resp := listingRequestIDs(r, &tc)
	if resp != nil {
		return resp
	}

	listing, err := api.Deps.Listings.Get(r.Context(), listingID, userID)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Listing retrieved successfully", values.Success, listing)
}

func (api *API) EditListing(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, listingID, resp := listingRequestIDs(r, &tc)
	if resp != nil {
		return resp
	}

	var req model.ListingRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "title and description are required, phone numbers are at most 15 characters", values.BadRequestBody, &tc)
	}

	listing, err := api.Deps.Listings.Edit(r.Context(), listingID, userID, req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your post has been updated successfully!", values.Success, listing)
}

func (api *API) DeactivateListing(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, listingID, resp := listingRequestIDs(r, &tc)
	if resp != nil {
		return resp
	}

	if err := api.Deps.Listings.Deactivate(r.Context(), listingID, userID); err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your post has been deactivated.", values.Success, nil)
}

func (api *API) DeleteListing(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, listingID, resp := listingRequestIDs(r, &tc)
	if resp != nil {
		return resp
	}

	if err := api.Deps.Listings.Delete(r.Context(), listingID, userID); err != nil {
		return api.fail(err, &tc)
	}
	return respond("The post has been deleted.", values.Success, nil)
}

// Dashboard returns the caller's own listings and both sides of their inbox.
func (api *API) Dashboard(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	listings, err := api.Deps.Listings.ListByAuthor(r.Context(), userID)
	if err != nil {
		return api.fail(err, &tc)
	}
	inbox, err := api.Deps.Contacts.ListForUser(r.Context(), userID)
	if err != nil {
		return api.fail(err, &tc)
	}

	return respond("Dashboard retrieved successfully", values.Success, model.DashboardResponse{
		Listings: listings,
		Inbox:    *inbox,
	})
}

func listingRequestIDs(r *http.Request, tc *tracing.Context) (uuid.UUID, uuid.UUID, *ServerResponse) {
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, respondWithError(err, "unable to get user ID from context", values.NotAuthorised, tc)
	}
	listingID, err := util.StringToUUID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, respondWithError(err, "listing not found", values.NotFound, tc)
	}
	return userID, listingID, nil
}
