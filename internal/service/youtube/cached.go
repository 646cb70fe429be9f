package youtube

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Taichi-iskw/enki/internal/logging"
	"github.com/Taichi-iskw/enki/internal/model"
)

const (
	videoTTL   = 24 * time.Hour
	channelTTL = 7 * 24 * time.Hour
)

// Cache is the subset of internal/cache.RedisCache used for metadata
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedSource wraps a Source with a cache-aside layer. Cache errors are logged and ignored.
type CachedSource struct {
	next  Source
	cache Cache
	log   *zap.Logger
}

// NewCachedSource creates a CachedSource in front of next
func NewCachedSource(next Source, cache Cache, log *zap.Logger) *CachedSource {
	log = logging.OrNop(log)
	return &CachedSource{next: next, cache: cache, log: log}
}

func (s *CachedSource) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	return cached(ctx, s, "video:"+videoID, videoTTL, func() (*model.VideoMetadata, error) {
		return s.next.FetchVideo(ctx, videoID)
	})
}

func (s *CachedSource) FetchChannel(ctx context.Context, externalID string) (*model.ChannelMetadata, error) {
	return cached(ctx, s, "channel:"+externalID, channelTTL, func() (*model.ChannelMetadata, error) {
		return s.next.FetchChannel(ctx, externalID)
	})
}

func cached[T any](ctx context.Context, s *CachedSource, key string, ttl time.Duration, fetch func() (*T, error)) (*T, error) {
	var hit T
	ok, err := s.cache.Get(ctx, key, &hit)
	if err != nil {
		s.log.Warn("metadata cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return &hit, nil
	}

	value, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn("metadata cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
