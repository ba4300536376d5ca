package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
)

type ServerResponse struct {
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	resp := &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
	if tc != nil && tc.RequestID != "" {
		resp.Data = map[string]string{"request_id": tc.RequestID}
	}
	return resp
}

func respond(message, status string, data interface{}) *ServerResponse {
	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       data,
	}
}

// fail converts a service error into a response. Unexpected errors are logged
// with the request context and reported with a generic message.
func (api *API) fail(err error, tc *tracing.Context) *ServerResponse {
	status := errorStatus(err)
	if status == values.Error {
		api.Logger.Error("request failed", "error", err, "request_id", tc.RequestID, "source", tc.RequestSource)
		return respondWithError(err, values.SystemErr, status, tc)
	}
	if status == values.Unavailable {
		api.Logger.Warn("request failed on a transient error", "error", err, "request_id", tc.RequestID)
		return respondWithError(err, apperr.Message(err, values.TryAgain), status, tc)
	}
	return respondWithError(err, apperr.Message(err, status), status, tc)
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return values.BadRequestBody
	case errors.Is(err, apperr.ErrUnauthenticated):
		return values.NotAuthorised
	case errors.Is(err, apperr.ErrPermission):
		return values.NotAllowed
	case errors.Is(err, apperr.ErrNotFound):
		return values.NotFound
	case errors.Is(err, apperr.ErrState), errors.Is(err, apperr.ErrConflict):
		return values.Conflict
	case errors.Is(err, apperr.ErrTransient):
		return values.Unavailable
	default:
		return values.Error
	}
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	resp := respondWithError(err, message, status, nil)
	body := []byte(`{"message":"` + values.SystemErr + `","status":"` + values.Error + `"}`)
	if b, marshalErr := json.Marshal(resp); marshalErr == nil {
		body = b
	}
	writeJSONResponse(w, body, resp.StatusCode)
}
