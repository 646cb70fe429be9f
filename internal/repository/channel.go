package repository

import (
	"context"

	"github.com/Taichi-iskw/enki/internal/model"
)

// ChannelRepository defines operations for VideoChannel persistence
type ChannelRepository interface {
	// Create inserts a new channel and sets its generated ID
	Create(ctx context.Context, channel *model.VideoChannel) error

	// GetByID retrieves a channel by its ID
	GetByID(ctx context.Context, id string) (*model.VideoChannel, error)

	// FindByExternalID returns the channel with the given platform ID, or nil
	FindByExternalID(ctx context.Context, externalID string) (*model.VideoChannel, error)

	// FindByURL returns the channel with the given link, or nil
	FindByURL(ctx context.Context, link string) (*model.VideoChannel, error)

	// UpdateExternalID attaches a platform ID to a channel created by link only
	UpdateExternalID(ctx context.Context, id, externalID string) error

	// List retrieves channels with pagination
	List(ctx context.Context, limit, offset int) ([]*model.VideoChannel, error)
}
