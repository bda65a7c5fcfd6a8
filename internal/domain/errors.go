package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username/email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserInactive indicates the user account is disabled.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Post Errors
	// ===========================================

	// ErrPostAlreadyExists indicates the video was already published.
	ErrPostAlreadyExists = errors.New("post already exists for this video")

	// ErrDescriptionTooLong indicates the description exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = errors.New("description is too long")

	// ===========================================
	// Upload Errors
	// ===========================================

	// ErrNotAllowedToUpload indicates the requester failed the upload eligibility check.
	ErrNotAllowedToUpload = errors.New("user is not allowed to upload videos")

	// ErrObjectNotFound indicates the requested object does not exist in storage.
	ErrObjectNotFound = errors.New("object not found")
)
