package sigv4

import (
	"context"
	"time"
)

// =============================================================================
// Credential Types
// =============================================================================

// Credentials is a resolved access key pair. Values are obtained once per
// signing operation and are never persisted.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey Secret
}

// CredentialsProvider resolves credentials from the execution environment.
// Implementations may block and must honour ctx cancellation.
type CredentialsProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// StaticCredentials always returns the same key pair.
type StaticCredentials struct {
	Credentials Credentials
}

// NewStaticCredentials creates a provider for a fixed key pair.
func NewStaticCredentials(accessKeyID, secretAccessKey string) StaticCredentials {
	return StaticCredentials{Credentials: Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: NewSecret(secretAccessKey),
	}}
}

// Retrieve returns the configured key pair.
func (p StaticCredentials) Retrieve(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	if p.Credentials.AccessKeyID == "" || p.Credentials.SecretAccessKey.IsZero() {
		return Credentials{}, ErrCredentialsUnavailable
	}
	return p.Credentials, nil
}

// =============================================================================
// Scope
// =============================================================================

// SigningScope is the credential scope of a signature.
// Format: {date}/{region}/{service}/aws4_request
type SigningScope struct {
	// Date is the signing instant; only its UTC calendar date is used in the scope.
	Date time.Time

	// Region is the AWS region (e.g., "us-east-1").
	Region string

	// Service is the AWS service, always "s3" here.
	Service string
}

// NewSigningScope creates an S3 scope for the given instant and region.
func NewSigningScope(now time.Time, region string) SigningScope {
	return SigningScope{Date: now.UTC(), Region: region, Service: ServiceS3}
}

// DateStamp returns the YYYYMMDD date.
func (s SigningScope) DateStamp() string {
	return s.Date.UTC().Format(YYYYMMDD)
}

// AmzDate returns the full YYYYMMDDTHHMMSSZ timestamp.
func (s SigningScope) AmzDate() string {
	return s.Date.UTC().Format(ISO8601BasicFormat)
}

// String returns the credential scope as a string.
func (s SigningScope) String() string {
	return s.DateStamp() + "/" + s.Region + "/" + s.Service + "/" + AWS4Request
}

// Credential returns the X-Amz-Credential value for accessKeyID.
func (s SigningScope) Credential(accessKeyID string) string {
	return accessKeyID + "/" + s.String()
}
