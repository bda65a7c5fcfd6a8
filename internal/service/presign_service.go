package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/metrics"
	"github.com/prn-tf/vidfeed/internal/sigv4"
	"github.com/prn-tf/vidfeed/internal/storage"
)

// PresignService issues POST-policy upload grants.
type PresignService struct {
	credentials storage.CredentialsProvider
	region      string
	window      time.Duration
	endpoint    storage.EndpointConfig
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// PresignConfig contains configuration for the presign service.
type PresignConfig struct {
	Region string

	// Window is how long a grant stays valid.
	Window time.Duration

	// Endpoint selects local emulator or provider addressing.
	Endpoint storage.EndpointConfig
}

// DefaultPresignConfig returns default presign configuration.
func DefaultPresignConfig() PresignConfig {
	return PresignConfig{
		Region:   sigv4.DefaultRegion,
		Window:   sigv4.DefaultValidityWindow,
		Endpoint: storage.ProviderEndpoint(""),
	}
}

// Validate checks the configuration.
func (c PresignConfig) Validate() error {
	if c.Window < time.Second || c.Window > sigv4.MaxValidityWindow {
		return ErrInvalidExpiration
	}
	if c.Region == "" {
		return fmt.Errorf("%w: empty region", ErrSigningInvariantViolation)
	}
	return c.Endpoint.Validate()
}

// NewPresignService creates a new PresignService.
func NewPresignService(credentials storage.CredentialsProvider, config PresignConfig, m *metrics.Metrics, logger zerolog.Logger) (*PresignService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PresignService{
		credentials: credentials,
		region:      config.Region,
		window:      config.Window,
		endpoint:    config.Endpoint,
		now:         time.Now,
		metrics:     m,
		logger:      logger.With().Str("service", "presign").Logger(),
	}, nil
}

// PresignPost resolves credentials and signs a policy allowing exactly one
// object upload to bucket under objectKey. No partial grant is ever returned.
func (s *PresignService) PresignPost(ctx context.Context, bucket, objectKey string) (*domain.PresignedUploadGrant, error) {
	started := time.Now()
	creds, err := s.credentials.Retrieve(ctx)
	s.metrics.CredentialResolution(time.Since(started))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve signing credentials")
		if errors.Is(err, ErrCredentialsUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}

	// The single time sample for this request.
	now := s.now().UTC()
	scope := sigv4.NewSigningScope(now, s.region)
	policy := sigv4.BuildPolicy(bucket, objectKey, creds.AccessKeyID, scope, s.window)

	signed, err := sigv4.Sign(policy, creds, scope)
	if err != nil {
		s.logger.Error().Err(err).Str("key", objectKey).Msg("failed to sign upload policy")
		return nil, err
	}

	grant, err := Assemble(s.endpoint, bucket, objectKey, scope.Credential(creds.AccessKeyID), scope.AmzDate(), signed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	grant.ExpiresAt = policy.Expiration

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", objectKey).
		Str("access_key_id", creds.AccessKeyID).
		Time("expires_at", grant.ExpiresAt).
		Msg("generated presigned upload grant")

	return grant, nil
}

// Assemble builds the grant returned to the client. The field order is the
// order the client must send them in.
func Assemble(endpoint storage.EndpointConfig, bucket, objectKey, credential, amzDate string, signed sigv4.SignedPolicy) (*domain.PresignedUploadGrant, error) {
	url, err := endpoint.BucketURL(bucket)
	if err != nil {
		return nil, err
	}

	return &domain.PresignedUploadGrant{
		Endpoint: url,
		Fields: []domain.FormField{
			{Name: sigv4.FieldKey, Value: objectKey},
			{Name: sigv4.FieldCredential, Value: credential},
			{Name: sigv4.FieldAlgorithm, Value: sigv4.Algorithm},
			{Name: sigv4.FieldDate, Value: amzDate},
			{Name: sigv4.FieldPolicy, Value: signed.Policy},
			{Name: sigv4.FieldSignature, Value: signed.Signature},
		},
	}, nil
}
