// Package s3 implements the storage contracts on top of aws-sdk-go-v2.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/sigv4"
)

// CredentialsConfig bounds credential resolution.
type CredentialsConfig struct {
	// Timeout bounds each resolution attempt.
	Timeout time.Duration

	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// MaxBackoff caps the jittered delay between attempts.
	MaxBackoff time.Duration
}

// DefaultCredentialsConfig returns default resolution bounds.
func DefaultCredentialsConfig() CredentialsConfig {
	return CredentialsConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		MaxBackoff:  2 * time.Second,
	}
}

// CredentialsProvider adapts an AWS credentials provider (the default chain:
// environment, shared config, container or instance role) to sigv4.
type CredentialsProvider struct {
	provider aws.CredentialsProvider
	config   CredentialsConfig
	backoff  *retry.ExponentialJitterBackoff
	sleep    func(ctx context.Context, d time.Duration) error
	logger   zerolog.Logger
}

// NewCredentialsProvider wraps provider.
func NewCredentialsProvider(provider aws.CredentialsProvider, config CredentialsConfig, logger zerolog.Logger) *CredentialsProvider {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultCredentialsConfig().MaxBackoff
	}
	return &CredentialsProvider{
		provider: provider,
		config:   config,
		backoff:  retry.NewExponentialJitterBackoff(config.MaxBackoff),
		sleep:    sleepContext,
		logger:   logger.With().Str("component", "credentials").Logger(),
	}
}

// Retrieve resolves credentials, retrying transient failures. Cancellation of
// ctx stops immediately. Every failure is reported as ErrCredentialsUnavailable.
func (p *CredentialsProvider) Retrieve(ctx context.Context) (sigv4.Credentials, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		creds, err := p.retrieveOnce(ctx)
		if err == nil {
			return creds, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == p.config.MaxAttempts {
			break
		}

		delay, berr := p.backoff.BackoffDelay(attempt, err)
		if berr != nil {
			break
		}

		p.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("credential resolution failed, retrying")

		if err := p.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return sigv4.Credentials{}, fmt.Errorf("%w: %v", sigv4.ErrCredentialsUnavailable, lastErr)
}

func (p *CredentialsProvider) retrieveOnce(ctx context.Context) (sigv4.Credentials, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	creds, err := p.provider.Retrieve(ctx)
	if err != nil {
		return sigv4.Credentials{}, err
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return sigv4.Credentials{}, errors.New("provider returned empty credentials")
	}

	return sigv4.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: sigv4.NewSecret(creds.SecretAccessKey),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ sigv4.CredentialsProvider = (*CredentialsProvider)(nil)
