// Package service provides business logic services for vidfeed.
package service

import (
	"errors"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/sigv4"
)

// Common service errors.
var (
	// User errors
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrUserAlreadyExists  = domain.ErrUserAlreadyExists
	ErrUserInactive       = domain.ErrUserInactive
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrInvalidPassword    = errors.New("invalid password: must be at least 8 characters")
	ErrInvalidUsername    = errors.New("invalid username: must be 3-255 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrRegistrationBusy   = errors.New("username is being registered by another request")

	// Timeline errors
	ErrInvalidCursor      = errors.New("invalid cursor: must be a non-negative integer")
	ErrInvalidVideoID     = errors.New("invalid video id")
	ErrDescriptionTooLong = domain.ErrDescriptionTooLong
	ErrPostAlreadyExists  = domain.ErrPostAlreadyExists

	// Upload errors
	ErrNotAllowedToUpload        = domain.ErrNotAllowedToUpload
	ErrObjectNotFound            = domain.ErrObjectNotFound
	ErrCredentialsUnavailable    = sigv4.ErrCredentialsUnavailable
	ErrSigningInvariantViolation = sigv4.ErrSigningInvariantViolation
	ErrPolicyEncoding            = sigv4.ErrPolicyEncoding
	ErrInvalidExpiration         = errors.New("invalid expiration: must be between 1 second and 7 days")

	// General errors
	ErrInternalError = errors.New("internal server error")
)

// IsValidationError reports whether err is caused by invalid client input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidPassword,
		ErrInvalidUsername,
		ErrInvalidEmail,
		ErrInvalidCursor,
		ErrInvalidVideoID,
		ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
