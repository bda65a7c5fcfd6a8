package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/sigv4"
	"github.com/prn-tf/vidfeed/internal/storage"
)

const testBucket = "videos"

func newTestVideoService(t *testing.T) (*VideoService, *mockEligibility, *mockPresigner, *mockObjectStore) {
	t.Helper()
	eligibility := new(mockEligibility)
	presigner := new(mockPresigner)
	objects := new(mockObjectStore)
	svc := NewVideoService(eligibility, presigner, objects, testBucket, nil, zerolog.Nop())
	return svc, eligibility, presigner, objects
}

func TestVideoService_StartUpload(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("issues grant for fresh key", func(t *testing.T) {
		svc, eligibility, presigner, _ := newTestVideoService(t)
		svc.newKey = func() string { return goldenObjectKey }

		grant := &domain.PresignedUploadGrant{
			Endpoint: "https://videos.s3.amazonaws.com",
			Fields:   []domain.FormField{{Name: "key", Value: goldenObjectKey}},
		}
		eligibility.On("CanUpload", ctx, userID).Return(true, nil)
		presigner.On("PresignPost", ctx, testBucket, goldenObjectKey).Return(grant, nil)

		upload, err := svc.StartUpload(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, goldenObjectKey, upload.VideoID)
		assert.Same(t, grant, upload.Grant)
		presigner.AssertExpectations(t)
	})

	t.Run("denied user never reaches signer", func(t *testing.T) {
		svc, eligibility, presigner, _ := newTestVideoService(t)
		eligibility.On("CanUpload", ctx, userID).Return(false, nil)

		upload, err := svc.StartUpload(ctx, userID)
		assert.Nil(t, upload)
		assert.ErrorIs(t, err, ErrNotAllowedToUpload)
		presigner.AssertNotCalled(t, "PresignPost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("eligibility failure fails closed", func(t *testing.T) {
		svc, eligibility, presigner, _ := newTestVideoService(t)
		eligibility.On("CanUpload", ctx, userID).Return(true, errors.New("db down"))

		upload, err := svc.StartUpload(ctx, userID)
		assert.Nil(t, upload)
		assert.ErrorIs(t, err, ErrInternalError)
		presigner.AssertNotCalled(t, "PresignPost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("signer failure is passed through", func(t *testing.T) {
		svc, eligibility, presigner, _ := newTestVideoService(t)
		eligibility.On("CanUpload", ctx, userID).Return(true, nil)
		presigner.On("PresignPost", ctx, testBucket, mock.Anything).
			Return(nil, ErrCredentialsUnavailable)

		upload, err := svc.StartUpload(ctx, userID)
		assert.Nil(t, upload)
		assert.ErrorIs(t, err, ErrCredentialsUnavailable)
	})
}

func TestVideoService_StartUpload_KeysAreUnique(t *testing.T) {
	presigner, err := NewPresignService(
		sigv4.NewStaticCredentials("AKIDEXAMPLE", "test-secret"),
		PresignConfig{Region: "us-east-1", Window: 15 * time.Minute, Endpoint: storage.ProviderEndpoint("")},
		nil, zerolog.Nop(),
	)
	require.NoError(t, err)

	svc := NewVideoService(AllowAllEligibility{}, presigner, new(mockObjectStore), testBucket, nil, zerolog.Nop())

	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		upload, err := svc.StartUpload(context.Background(), uuid.New())
		require.NoError(t, err)

		key, ok := upload.Grant.Field("key")
		require.True(t, ok)
		require.Equal(t, upload.VideoID, key)

		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestVideoService_GetVideo(t *testing.T) {
	ctx := context.Background()
	videoID := uuid.NewString()

	tests := []struct {
		name    string
		videoID string
		setup   func(objects *mockObjectStore)
		want    []byte
		wantErr error
	}{
		{
			name:    "found",
			videoID: videoID,
			setup: func(objects *mockObjectStore) {
				objects.On("Get", ctx, testBucket, videoID).Return([]byte("mp4"), nil)
			},
			want: []byte("mp4"),
		},
		{
			name:    "missing object",
			videoID: videoID,
			setup: func(objects *mockObjectStore) {
				objects.On("Get", ctx, testBucket, videoID).Return(nil, domain.ErrObjectNotFound)
			},
			wantErr: ErrObjectNotFound,
		},
		{
			name:    "backend failure",
			videoID: videoID,
			setup: func(objects *mockObjectStore) {
				objects.On("Get", ctx, testBucket, videoID).Return(nil, errors.New("timeout"))
			},
			wantErr: ErrInternalError,
		},
		{
			name:    "not a uuid",
			videoID: "../etc/passwd",
			setup:   func(objects *mockObjectStore) {},
			wantErr: ErrInvalidVideoID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, objects := newTestVideoService(t)
			tt.setup(objects)

			body, err := svc.GetVideo(ctx, tt.videoID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body)
		})
	}
}
