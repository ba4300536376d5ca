package rest

import (
	"net/http"

	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/values"
)

// ServeWebsocket attaches the caller to the realtime hub.
func (api *API) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, err, values.NotAuthorised, "not-authorized")
		return
	}
	api.Deps.Hub.HandleConnections(w, r, userID)
}
