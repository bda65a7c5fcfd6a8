// Package auth issues and verifies session tokens and carries the
// authenticated user through request contexts.
package auth

import (
	"errors"
	"net/http"
)

// Authentication errors.
var (
	// ErrMissingToken indicates the Authorization header is absent.
	ErrMissingToken = errors.New("missing authorization token")

	// ErrInvalidToken indicates the token is malformed or its signature is wrong.
	ErrInvalidToken = errors.New("invalid authorization token")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("authorization token has expired")

	// ErrAccessDenied indicates the request carries no authenticated user.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidSecret indicates a signing secret that is too short.
	ErrInvalidSecret = errors.New("token secret must be at least 32 bytes")
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeUnauthorized ErrorCode = "Unauthorized"
	CodeTokenExpired ErrorCode = "TokenExpired"
	CodeAccessDenied ErrorCode = "AccessDenied"
)

// AuthError represents an authentication error with its HTTP mapping.
type AuthError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *AuthError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewAuthError maps err to an AuthError.
func NewAuthError(err error) *AuthError {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return &AuthError{Code: CodeTokenExpired, Message: err.Error(), HTTPStatus: http.StatusUnauthorized}
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		return &AuthError{Code: CodeUnauthorized, Message: err.Error(), HTTPStatus: http.StatusUnauthorized}
	default:
		return &AuthError{Code: CodeAccessDenied, Message: ErrAccessDenied.Error(), HTTPStatus: http.StatusForbidden}
	}
}
