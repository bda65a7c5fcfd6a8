package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vidfeed/internal/domain"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, *params.Bucket, *params.Key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestObjectStore_Get(t *testing.T) {
	client := new(mockS3)
	client.On("GetObject", mock.Anything, "videos", "abc").Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("video-bytes")),
	}, nil)

	store := newObjectStore(client, zerolog.Nop())
	body, err := store.Get(context.Background(), "videos", "abc")
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(body))
	client.AssertExpectations(t)
}

func TestObjectStore_GetNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no such key", err: &types.NoSuchKey{}},
		{name: "not found", err: &types.NotFound{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockS3)
			client.On("GetObject", mock.Anything, "videos", "missing").Return(nil, tt.err)

			_, err := newObjectStore(client, zerolog.Nop()).Get(context.Background(), "videos", "missing")
			assert.ErrorIs(t, err, domain.ErrObjectNotFound)
		})
	}
}

func TestObjectStore_GetFailure(t *testing.T) {
	client := new(mockS3)
	client.On("GetObject", mock.Anything, "videos", "abc").Return(nil, errors.New("connection reset"))

	_, err := newObjectStore(client, zerolog.Nop()).Get(context.Background(), "videos", "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrObjectNotFound)
}
