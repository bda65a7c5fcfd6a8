package sigv4

import "errors"

// Signing errors.
var (
	// ErrCredentialsUnavailable indicates credentials could not be resolved
	// from the execution environment.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")

	// ErrSigningInvariantViolation indicates a signer input that can never be
	// valid, such as an empty secret or region. It is a defect, not retried.
	ErrSigningInvariantViolation = errors.New("signing invariant violated")

	// ErrPolicyEncoding indicates the policy document could not be serialized.
	ErrPolicyEncoding = errors.New("policy document encoding failed")
)
