package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vidfeed/internal/sigv4"
	"github.com/prn-tf/vidfeed/internal/storage"
)

var presignNow = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

const (
	goldenObjectKey = "11111111-1111-1111-1111-111111111111"
	goldenPolicyB64 = "eyJjb25kaXRpb25zIjpbeyJidWNrZXQiOiJ2aWRlb3MifSxbInN0YXJ0cy13aXRoIiwiJGtleSIsIjExMTExMTExLTExMTEtMTExMS0xMTExLTExMTExMTExMTExMSJdLHsieC1hbXotY3JlZGVudGlhbCI6IkFLSURFWEFNUExFLzIwMjQwMTE1L3VzLWVhc3QtMS9zMy9hd3M0X3JlcXVlc3QifSx7IngtYW16LWFsZ29yaXRobSI6IkFXUzQtSE1BQy1TSEEyNTYifSx7IngtYW16LWRhdGUiOiIyMDI0MDExNVQxMDMwMDBaIn0sWyJjb250ZW50LWxlbmd0aC1yYW5nZSIsMTAwMCwxMDQ4NTc2MF1dLCJleHBpcmF0aW9uIjoiMjAyNC0wMS0xNVQxMDo0NTowMC4wMDAwMDBaIn0="
	goldenSignature = "bdabe3218f390d61ba7d058700f8c687f573eac548d5983ff21323f325a0ebf3"
)

type failingCredentials struct{ err error }

func (f failingCredentials) Retrieve(ctx context.Context) (sigv4.Credentials, error) {
	return sigv4.Credentials{}, f.err
}

func newTestPresignService(t *testing.T, creds storage.CredentialsProvider, endpoint storage.EndpointConfig) *PresignService {
	t.Helper()
	svc, err := NewPresignService(creds, PresignConfig{
		Region:   "us-east-1",
		Window:   900 * time.Second,
		Endpoint: endpoint,
	}, nil, zerolog.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return presignNow }
	return svc
}

func TestPresignService_Golden(t *testing.T) {
	svc := newTestPresignService(t, sigv4.NewStaticCredentials("AKIDEXAMPLE", "test-secret"), storage.LocalEndpoint("http://localhost:4566"))

	grant, err := svc.PresignPost(context.Background(), "videos", goldenObjectKey)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4566/videos", grant.Endpoint)
	assert.Equal(t, presignNow.Add(900*time.Second), grant.ExpiresAt)

	names := make([]string, 0, len(grant.Fields))
	for _, f := range grant.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"key", "X-Amz-Credential", "X-Amz-Algorithm", "X-Amz-Date", "Policy", "X-Amz-Signature"}, names)

	want := map[string]string{
		"key":              goldenObjectKey,
		"X-Amz-Credential": "AKIDEXAMPLE/20240115/us-east-1/s3/aws4_request",
		"X-Amz-Algorithm":  "AWS4-HMAC-SHA256",
		"X-Amz-Date":       "20240115T103000Z",
		"Policy":           goldenPolicyB64,
		"X-Amz-Signature":  goldenSignature,
	}
	for name, value := range want {
		got, ok := grant.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}

func TestPresignService_ProductionEndpoint(t *testing.T) {
	svc := newTestPresignService(t, sigv4.NewStaticCredentials("AKIDEXAMPLE", "test-secret"), storage.ProviderEndpoint(""))

	grant, err := svc.PresignPost(context.Background(), "videos", goldenObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://videos.s3.amazonaws.com", grant.Endpoint)

	// Addressing does not influence the signature.
	sig, _ := grant.Field("X-Amz-Signature")
	assert.Equal(t, goldenSignature, sig)
}

func TestPresignService_CredentialsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "plain error", err: errors.New("no provider in chain")},
		{name: "already classified", err: sigv4.ErrCredentialsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPresignService(t, failingCredentials{err: tt.err}, storage.ProviderEndpoint(""))

			grant, err := svc.PresignPost(context.Background(), "videos", goldenObjectKey)
			assert.Nil(t, grant)
			assert.ErrorIs(t, err, ErrCredentialsUnavailable)
		})
	}
}

func TestPresignService_SamplesClockOnce(t *testing.T) {
	svc := newTestPresignService(t, sigv4.NewStaticCredentials("AKIDEXAMPLE", "test-secret"), storage.ProviderEndpoint(""))

	calls := 0
	tick := presignNow.Add(999 * time.Millisecond)
	svc.now = func() time.Time {
		calls++
		tick = tick.Add(time.Millisecond)
		return tick
	}

	grant, err := svc.PresignPost(context.Background(), "videos", goldenObjectKey)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	date, _ := grant.Field("X-Amz-Date")
	assert.Equal(t, "20240115T103001Z", date)
	assert.Equal(t, tick.Add(900*time.Second), grant.ExpiresAt)
}

func TestPresignConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PresignConfig
		wantErr error
	}{
		{name: "default", config: DefaultPresignConfig()},
		{name: "zero window", config: PresignConfig{Region: "us-east-1", Window: 0, Endpoint: storage.ProviderEndpoint("")}, wantErr: ErrInvalidExpiration},
		{name: "window too long", config: PresignConfig{Region: "us-east-1", Window: 8 * 24 * time.Hour, Endpoint: storage.ProviderEndpoint("")}, wantErr: ErrInvalidExpiration},
		{name: "empty region", config: PresignConfig{Window: time.Minute, Endpoint: storage.ProviderEndpoint("")}, wantErr: ErrSigningInvariantViolation},
		{name: "bad endpoint", config: PresignConfig{Region: "us-east-1", Window: time.Minute, Endpoint: storage.LocalEndpoint("")}, wantErr: storage.ErrInvalidEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
