package repository

import (
	"context"
	"errors"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// querier is satisfied by both Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const channelColumns = "id, external_id, link, name"

// channelRepository implements ChannelRepository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(pool Pool) ChannelRepository {
	return &channelRepository{
		pool: pool,
	}
}

// Create inserts a new channel record
func (r *channelRepository) Create(ctx context.Context, channel *model.VideoChannel) error {
	sql := "INSERT INTO video_channels (external_id, link, name) VALUES ($1, $2, $3) RETURNING id"
	err := r.pool.QueryRow(ctx, sql, channel.ExternalID, channel.Link, channel.Name).Scan(&channel.ID)
	if err != nil {
		return handlePostgreSQLError(err, "failed to create channel")
	}
	return nil
}

// GetByID retrieves a channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.VideoChannel, error) {
	sql := "SELECT " + channelColumns + " FROM video_channels WHERE id = $1"
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get channel")
	}
	return channel, nil
}

// FindByExternalID retrieves a channel by its platform ID
func (r *channelRepository) FindByExternalID(ctx context.Context, externalID string) (*model.VideoChannel, error) {
	sql := "SELECT " + channelColumns + " FROM video_channels WHERE external_id = $1"
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get channel by external ID")
	}
	return channel, nil
}

// FindByURL retrieves a channel by its link
func (r *channelRepository) FindByURL(ctx context.Context, link string) (*model.VideoChannel, error) {
	sql := "SELECT " + channelColumns + " FROM video_channels WHERE link = $1"
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, link))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get channel by URL")
	}
	return channel, nil
}

// UpdateExternalID sets the platform ID of an existing channel
func (r *channelRepository) UpdateExternalID(ctx context.Context, id, externalID string) error {
	sql := "UPDATE video_channels SET external_id = $2 WHERE id = $1"
	tag, err := r.pool.Exec(ctx, sql, id, externalID)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update channel")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	return nil
}

// List retrieves channels with pagination
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*model.VideoChannel, error) {
	sql := "SELECT " + channelColumns + " FROM video_channels ORDER BY created_at DESC, id LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list channels")
	}
	defer rows.Close()

	channels := []*model.VideoChannel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel row")
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate channel rows")
	}

	return channels, nil
}

func scanChannel(row pgx.Row) (*model.VideoChannel, error) {
	var channel model.VideoChannel
	if err := row.Scan(&channel.ID, &channel.ExternalID, &channel.Link, &channel.Name); err != nil {
		return nil, err
	}
	return &channel, nil
}
