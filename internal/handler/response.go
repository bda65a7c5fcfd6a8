package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/prn-tf/vidfeed/internal/auth"
	"github.com/prn-tf/vidfeed/internal/service"
)

// ErrorCode is the machine-readable code in error bodies.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BadRequest"
	CodeMissingRequestID ErrorCode = "MissingRequestID"
	CodeValidation       ErrorCode = "ValidationFailed"
	CodeConflict         ErrorCode = "Conflict"
	CodeUnauthorized     ErrorCode = "Unauthorized"
	CodeForbidden        ErrorCode = "Forbidden"
	CodeNotFound         ErrorCode = "NotFound"
	CodeUnavailable      ErrorCode = "ServiceUnavailable"
	CodeInternal         ErrorCode = "InternalError"
)

// errBadJSON marks an undecodable request body.
var errBadJSON = errors.New("request body must be a JSON object")

// APIError is an error with its HTTP mapping.
type APIError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// toAPIError maps service errors to HTTP responses. Internal failures keep
// their details out of the response body.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, auth.ErrAccessDenied):
		return &APIError{Code: CodeUnauthorized, Message: err.Error(), HTTPStatus: http.StatusUnauthorized}
	case errors.Is(err, errBadJSON):
		return &APIError{Code: CodeBadRequest, Message: err.Error(), HTTPStatus: http.StatusBadRequest}
	case service.IsValidationError(err):
		return &APIError{Code: CodeValidation, Message: err.Error(), HTTPStatus: http.StatusUnprocessableEntity}
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPostAlreadyExists),
		errors.Is(err, service.ErrRegistrationBusy):
		return &APIError{Code: CodeConflict, Message: err.Error(), HTTPStatus: http.StatusConflict}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &APIError{Code: CodeUnauthorized, Message: err.Error(), HTTPStatus: http.StatusUnauthorized}
	case errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrNotAllowedToUpload):
		return &APIError{Code: CodeForbidden, Message: err.Error(), HTTPStatus: http.StatusForbidden}
	case errors.Is(err, service.ErrObjectNotFound), errors.Is(err, service.ErrUserNotFound):
		return &APIError{Code: CodeNotFound, Message: err.Error(), HTTPStatus: http.StatusNotFound}
	default:
		return &APIError{Code: CodeInternal, Message: service.ErrInternalError.Error(), HTTPStatus: http.StatusInternalServerError}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)

	event := hlog.FromRequest(r).Debug()
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Int("status", apiErr.HTTPStatus).Msg("request failed")

	writeJSON(w, r, apiErr.HTTPStatus, errorBody{Error: errorDetail{Code: apiErr.Code, Message: apiErr.Message}})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Int("status", status).Msg("failed to write response body")
	}
}

// decodeJSON reads a single JSON object into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadJSON
	}
	if _, err := dec.Token(); err != io.EOF {
		return errBadJSON
	}
	return nil
}
