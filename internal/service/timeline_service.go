package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/lock"
	"github.com/prn-tf/vidfeed/internal/metrics"
	"github.com/prn-tf/vidfeed/internal/repository"
	"github.com/prn-tf/vidfeed/internal/storage"
)

// TimelineConfig contains configuration for the timeline service.
type TimelineConfig struct {
	// PageSize is the number of posts per page.
	PageSize int

	// CacheTTL bounds how long a page is served from cache. Zero disables caching.
	CacheTTL time.Duration

	// Bucket and Endpoint resolve the public URL of published videos.
	Bucket   string
	Endpoint storage.EndpointConfig
}

// DefaultTimelineConfig returns default timeline configuration.
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		PageSize: 20,
		CacheTTL: 30 * time.Second,
	}
}

// TimelineService serves the post feed and publishes new posts.
type TimelineService struct {
	postRepo repository.PostRepository
	cache    repository.Cache
	locker   lock.Locker
	config   TimelineConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewTimelineService creates a new TimelineService. cache may be nil.
func NewTimelineService(
	postRepo repository.PostRepository,
	cache repository.Cache,
	locker lock.Locker,
	config TimelineConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *TimelineService {
	if config.PageSize <= 0 {
		config.PageSize = DefaultTimelineConfig().PageSize
	}
	return &TimelineService{
		postRepo: postRepo,
		cache:    cache,
		locker:   locker,
		config:   config,
		metrics:  m,
		logger:   logger.With().Str("service", "timeline").Logger(),
	}
}

// TimelinePage is one page of the feed.
type TimelinePage struct {
	Posts []*domain.Post

	// NextCursor is nil on the last page.
	NextCursor *int
}

// MaxCursor is the largest accepted offset.
const MaxCursor = math.MaxInt32

// ParseCursor parses the client-supplied cursor; empty means the first page.
func ParseCursor(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.Atoi(raw)
	if err != nil || cursor < 0 || cursor > MaxCursor {
		return 0, ErrInvalidCursor
	}
	return cursor, nil
}

// Page returns the posts starting at cursor, newest first.
func (s *TimelineService) Page(ctx context.Context, cursor int) (*TimelinePage, error) {
	if cursor < 0 || cursor > MaxCursor {
		return nil, ErrInvalidCursor
	}

	posts, err := s.cachedPage(ctx, cursor)
	if err != nil {
		return nil, err
	}

	page := &TimelinePage{Posts: posts}
	if len(posts) == s.config.PageSize {
		next := cursor + len(posts)
		page.NextCursor = &next
	}
	return page, nil
}

func (s *TimelineService) cachedPage(ctx context.Context, cursor int) ([]*domain.Post, error) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return s.loadPage(ctx, cursor)
	}

	generation, err := s.generation(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("timeline cache unavailable, reading from database")
		return s.loadPage(ctx, cursor)
	}
	key := repository.CacheKeys.TimelinePage(generation, cursor, s.config.PageSize)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var posts []*domain.Post
		if err := json.Unmarshal(raw, &posts); err == nil {
			s.metrics.TimelineCache(metrics.CacheHit)
			return posts, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable timeline cache entry")
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn().Err(err).Msg("timeline cache read failed")
	}
	s.metrics.TimelineCache(metrics.CacheMiss)

	posts, err := s.loadPage(ctx, cursor)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(posts); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.config.CacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("timeline cache write failed")
		}
	}
	return posts, nil
}

// generation returns the current feed generation; a missing counter is zero.
func (s *TimelineService) generation(ctx context.Context) (int64, error) {
	raw, err := s.cache.Get(ctx, repository.CacheKeys.TimelineGeneration())
	if errors.Is(err, repository.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad timeline generation %q: %w", raw, err)
	}
	return gen, nil
}

func (s *TimelineService) loadPage(ctx context.Context, cursor int) ([]*domain.Post, error) {
	posts, err := s.postRepo.ListRecent(ctx, repository.ListOptions{
		Offset: cursor,
		Limit:  s.config.PageSize,
	})
	if err != nil {
		s.logger.Error().Err(err).Int("cursor", cursor).Msg("failed to list posts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// PublishInput contains the data needed to publish a post.
type PublishInput struct {
	CreatorID   uuid.UUID
	VideoID     string
	Description string
}

// Publish records a post for an uploaded video and invalidates cached pages.
func (s *TimelineService) Publish(ctx context.Context, input PublishInput) (*domain.Post, error) {
	if _, err := uuid.Parse(input.VideoID); err != nil {
		return nil, ErrInvalidVideoID
	}
	if utf8.RuneCountInString(input.Description) > domain.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	videoURL, err := s.config.Endpoint.ObjectURL(s.config.Bucket, input.VideoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	post := domain.NewPost(input.CreatorID, input.VideoID, videoURL, input.Description)
	err = lock.WithLock(ctx, s.locker, lock.Keys.Publish(input.VideoID), 10*time.Second, func(ctx context.Context) error {
		return s.postRepo.Create(ctx, post)
	})
	switch {
	case errors.Is(err, lock.ErrNotAcquired), errors.Is(err, repository.ErrAlreadyExists):
		return nil, ErrPostAlreadyExists
	case err != nil:
		s.logger.Error().Err(err).Str("video_id", input.VideoID).Msg("failed to create post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.cache != nil {
		if _, err := s.cache.Increment(ctx, repository.CacheKeys.TimelineGeneration(), 1); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate timeline cache")
		}
	}

	s.logger.Info().
		Str("post_id", post.ID.String()).
		Str("creator_id", post.CreatorID.String()).
		Str("video_id", post.VideoKey).
		Msg("post published")

	return post, nil
}
