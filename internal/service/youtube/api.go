package youtube

import (
	"context"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
)

// APISource reads metadata from the YouTube Data API v3
type APISource struct {
	service *ytapi.Service
	cb      *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// APIOption configures an APISource
type APIOption func(*APISource)

// WithCircuitBreaker routes every API call through cb
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) APIOption {
	return func(s *APISource) { s.cb = cb }
}

// WithLogger sets the logger used for failed calls
func WithLogger(log *zap.Logger) APIOption {
	return func(s *APISource) { s.log = log }
}

// NewAPISource creates an APISource; clientOpts are passed to the API client
// (API key, endpoint, HTTP client)
func NewAPISource(ctx context.Context, clientOpts []option.ClientOption, opts ...APIOption) (*APISource, error) {
	service, err := ytapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create YouTube API client")
	}

	s := &APISource{service: service, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FetchVideo calls videos.list with the contentDetails and snippet parts
func (s *APISource) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	if videoID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "video ID is required")
	}

	resp, err := withBreaker(s, func() (*ytapi.VideoListResponse, error) {
		return s.service.Videos.List([]string{"contentDetails", "snippet"}).Id(videoID).Context(ctx).Do()
	})
	if err != nil {
		s.log.Warn("videos.list failed", zap.String("video_id", videoID), zap.Error(err))
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch video from YouTube API")
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil || resp.Items[0].ContentDetails == nil {
		return nil, errors.New(errors.CodeExternal, "no item for key "+videoID)
	}

	item := resp.Items[0]
	return &model.VideoMetadata{
		ID:                item.Id,
		Title:             item.Snippet.Title,
		ChannelExternalID: item.Snippet.ChannelId,
		Duration:          item.ContentDetails.Duration,
		PublishedAt:       item.Snippet.PublishedAt,
	}, nil
}

// FetchChannel calls channels.list with the snippet part
func (s *APISource) FetchChannel(ctx context.Context, externalID string) (*model.ChannelMetadata, error) {
	if externalID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel ID is required")
	}

	resp, err := withBreaker(s, func() (*ytapi.ChannelListResponse, error) {
		return s.service.Channels.List([]string{"snippet"}).Id(externalID).Context(ctx).Do()
	})
	if err != nil {
		s.log.Warn("channels.list failed", zap.String("channel_id", externalID), zap.Error(err))
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch channel from YouTube API")
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, errors.New(errors.CodeExternal, "no item for key "+externalID)
	}

	snippet := resp.Items[0].Snippet
	return &model.ChannelMetadata{
		ExternalID: externalID,
		Name:       snippet.Title,
		URL:        channelURL(snippet.CustomUrl, externalID),
	}, nil
}

func withBreaker[T any](s *APISource, call func() (*T, error)) (*T, error) {
	if s.cb == nil {
		return call()
	}
	result, err := s.cb.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}
