// Package youtube fetches video and channel metadata from YouTube.
package youtube

import (
	"context"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
)

// Source is interface for reading YouTube metadata
type Source interface {
	// FetchVideo returns metadata for a video ID
	FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error)
	// FetchChannel returns the display name and canonical URL of a channel
	FetchChannel(ctx context.Context, externalID string) (*model.ChannelMetadata, error)
}

// UnavailableSource stands in for a source that could not be configured.
// Commands that never fetch metadata keep working; fetches fail with the reason.
type UnavailableSource struct {
	Reason string
}

func (s UnavailableSource) FetchVideo(context.Context, string) (*model.VideoMetadata, error) {
	return nil, errors.New(errors.CodeInternal, "metadata source unavailable: "+s.Reason)
}

func (s UnavailableSource) FetchChannel(context.Context, string) (*model.ChannelMetadata, error) {
	return nil, errors.New(errors.CodeInternal, "metadata source unavailable: "+s.Reason)
}

const channelURLPrefix = "https://youtube.com/"

// channelURL builds the canonical channel link from a custom URL (e.g. "@handle"),
// falling back to the /channel/<id> form when the channel has none
func channelURL(customURL, externalID string) string {
	if customURL != "" {
		return channelURLPrefix + customURL
	}
	return channelURLPrefix + "channel/" + externalID
}
