// Package sigv4 builds and signs AWS Signature Version 4 POST policies.
// Signing is pure: everything it needs, including the current time, is passed in.
package sigv4

import "time"

// =============================================================================
// Constants
// =============================================================================

const (
	// Algorithm is the algorithm identifier for AWS Signature Version 4.
	Algorithm = "AWS4-HMAC-SHA256"

	// ISO8601BasicFormat is the X-Amz-Date layout.
	ISO8601BasicFormat = "20060102T150405Z"

	// YYYYMMDD is the short date format used in credential scope.
	YYYYMMDD = "20060102"

	// ExpirationFormat is RFC 3339 with microsecond precision and a literal Z.
	ExpirationFormat = "2006-01-02T15:04:05.000000Z"

	// ServiceS3 is the service name for S3.
	ServiceS3 = "s3"

	// DefaultRegion is the default region if not specified.
	DefaultRegion = "us-east-1"

	// AWS4Request is the termination string for credential scope.
	AWS4Request = "aws4_request"

	// keyPrefix is prepended to the secret before the first HMAC stage.
	keyPrefix = "AWS4"
)

// Upload size bounds enforced by the policy, in bytes.
const (
	MinContentLength int64 = 1000
	MaxContentLength int64 = 10 * 1024 * 1024
)

const (
	// DefaultValidityWindow is how long an issued policy stays valid.
	DefaultValidityWindow = 15 * time.Minute

	// MaxValidityWindow is the longest window S3 accepts for a POST policy.
	MaxValidityWindow = 7 * 24 * time.Hour
)

// =============================================================================
// Form Field Names
// =============================================================================

const (
	FieldKey        = "key"
	FieldCredential = "X-Amz-Credential"
	FieldAlgorithm  = "X-Amz-Algorithm"
	FieldDate       = "X-Amz-Date"
	FieldPolicy     = "Policy"
	FieldSignature  = "X-Amz-Signature"
)
