package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestIDHeader carries the caller-assigned request id.
const RequestIDHeader = "x-request-id"

// maxRequestIDLength bounds the id echoed back and logged.
const maxRequestIDLength = 128

// RequireRequestID rejects requests without an x-request-id header. The id
// is echoed on the response and attached to the request logger.
func RequireRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			writeError(w, r, &APIError{
				Code:       CodeMissingRequestID,
				Message:    "missing request id header: " + RequestIDHeader,
				HTTPStatus: http.StatusBadRequest,
			})
			return
		}

		w.Header().Set(RequestIDHeader, id)
		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}
