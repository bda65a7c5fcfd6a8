package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/metrics"
	"github.com/prn-tf/vidfeed/internal/storage"
)

// UploadEligibility decides whether a user may upload videos.
type UploadEligibility interface {
	CanUpload(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AllowAllEligibility lets every authenticated user upload.
type AllowAllEligibility struct{}

// CanUpload always returns true.
func (AllowAllEligibility) CanUpload(ctx context.Context, userID uuid.UUID) (bool, error) {
	return true, nil
}

// UploadPresigner issues upload grants.
type UploadPresigner interface {
	PresignPost(ctx context.Context, bucket, objectKey string) (*domain.PresignedUploadGrant, error)
}

// VideoService starts direct-to-storage uploads and reads videos back.
type VideoService struct {
	eligibility UploadEligibility
	presigner   UploadPresigner
	objects     storage.ObjectStore
	bucket      string
	newKey      func() string
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewVideoService creates a new VideoService.
func NewVideoService(
	eligibility UploadEligibility,
	presigner UploadPresigner,
	objects storage.ObjectStore,
	bucket string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *VideoService {
	return &VideoService{
		eligibility: eligibility,
		presigner:   presigner,
		objects:     objects,
		bucket:      bucket,
		newKey:      uuid.NewString,
		metrics:     m,
		logger:      logger.With().Str("service", "video").Logger(),
	}
}

// StartUpload checks eligibility, then issues a grant for a fresh object key.
// A rejected or failed check never reaches the signer.
func (s *VideoService) StartUpload(ctx context.Context, requesterID uuid.UUID) (*domain.VideoUpload, error) {
	allowed, err := s.eligibility.CanUpload(ctx, requesterID)
	if err != nil {
		s.metrics.UploadGrant(metrics.UploadFailed)
		s.logger.Error().Err(err).Str("user_id", requesterID.String()).Msg("eligibility check failed")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !allowed {
		s.metrics.UploadGrant(metrics.UploadDenied)
		s.logger.Info().Str("user_id", requesterID.String()).Msg("upload rejected by eligibility check")
		return nil, ErrNotAllowedToUpload
	}

	req := domain.UploadRequest{
		RequesterID: requesterID,
		Bucket:      s.bucket,
		ObjectKey:   s.newKey(),
	}

	grant, err := s.presigner.PresignPost(ctx, req.Bucket, req.ObjectKey)
	if err != nil {
		s.metrics.UploadGrant(metrics.UploadFailed)
		return nil, err
	}

	s.metrics.UploadGrant(metrics.UploadIssued)
	s.logger.Info().
		Str("user_id", requesterID.String()).
		Str("video_id", req.ObjectKey).
		Msg("upload started")

	return &domain.VideoUpload{VideoID: req.ObjectKey, Grant: grant}, nil
}

// GetVideo returns the bytes of an uploaded video. Only keys issued by
// StartUpload (UUIDs) are accepted.
func (s *VideoService) GetVideo(ctx context.Context, videoID string) ([]byte, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return nil, ErrInvalidVideoID
	}

	body, err := s.objects.Get(ctx, s.bucket, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, ErrObjectNotFound
		}
		s.logger.Error().Err(err).Str("video_id", videoID).Msg("failed to fetch video")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return body, nil
}
