// Package channel maps platform channel identities to catalog channel rows.
package channel

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/logging"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/repository"
	"github.com/Taichi-iskw/enki/internal/service/youtube"
)

// resolveTimeout bounds a shared resolution, which no longer follows any caller's context
const resolveTimeout = 30 * time.Second

// Resolver finds or creates the channel row for an external channel.
// Concurrent calls for the same external ID share one lookup; races with other
// processes end in a unique violation, which is resolved by re-reading the winner.
type Resolver struct {
	repo   repository.ChannelRepository
	source youtube.Source
	group  singleflight.Group
	log    *zap.Logger
}

// NewResolver creates a Resolver; source may be nil when only Resolve is used
func NewResolver(repo repository.ChannelRepository, source youtube.Source, log *zap.Logger) *Resolver {
	log = logging.OrNop(log)
	return &Resolver{repo: repo, source: source, log: log}
}

// Resolve returns the ID of the channel with externalID, attaching the ID to a channel
// already known by link, or creating the channel from link and name
func (r *Resolver) Resolve(ctx context.Context, externalID, link, name string) (string, error) {
	if externalID == "" {
		return "", errors.New(errors.CodeInvalidArg, "channel external ID is required")
	}
	return r.do(ctx, externalID, func(ctx context.Context) (string, error) {
		if id, ok, err := r.findByExternalID(ctx, externalID); err != nil || ok {
			return id, err
		}
		return r.reconcile(ctx, externalID, link, name)
	})
}

// ResolveExternal is Resolve with the link and name fetched from the metadata source
// when the channel is not known yet
func (r *Resolver) ResolveExternal(ctx context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", errors.New(errors.CodeInvalidArg, "channel external ID is required")
	}
	return r.do(ctx, externalID, func(ctx context.Context) (string, error) {
		if id, ok, err := r.findByExternalID(ctx, externalID); err != nil || ok {
			return id, err
		}

		if r.source == nil {
			return "", errors.New(errors.CodeInternal, "no channel metadata source configured")
		}
		meta, err := r.source.FetchChannel(ctx, externalID)
		if err != nil {
			return "", err
		}
		return r.reconcile(ctx, externalID, meta.URL, meta.Name)
	})
}

// do runs fn once per external ID across concurrent callers. Each caller stops
// waiting when its own ctx ends; the shared call keeps running for the others.
func (r *Resolver) do(ctx context.Context, externalID string, fn func(ctx context.Context) (string, error)) (string, error) {
	results := r.group.DoChan(externalID, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return fn(sharedCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		if res.Shared {
			r.log.Debug("channel resolution shared", zap.String("external_id", externalID))
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *Resolver) findByExternalID(ctx context.Context, externalID string) (string, bool, error) {
	ch, err := r.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return "", false, err
	}
	if ch == nil {
		return "", false, nil
	}
	return ch.ID, true, nil
}

// reconcile runs the link lookup and create steps, retrying once when another
// writer inserted the same channel first
func (r *Resolver) reconcile(ctx context.Context, externalID, link, name string) (string, error) {
	for attempt := 0; ; attempt++ {
		id, err := r.reconcileOnce(ctx, externalID, link, name)
		if err == nil || attempt > 0 || !errors.IsCode(err, errors.CodeConflict) {
			return id, err
		}

		r.log.Info("channel created concurrently, re-reading", zap.String("external_id", externalID), zap.String("link", link))
		if id, ok, err := r.findByExternalID(ctx, externalID); err != nil || ok {
			return id, err
		}
	}
}

func (r *Resolver) reconcileOnce(ctx context.Context, externalID, link, name string) (string, error) {
	existing, err := r.repo.FindByURL(ctx, link)
	if err != nil {
		return "", err
	}

	if existing != nil {
		if existing.ExternalID != nil && *existing.ExternalID == externalID {
			return existing.ID, nil
		}
		if err := r.repo.UpdateExternalID(ctx, existing.ID, externalID); err != nil {
			return "", err
		}
		r.log.Info("attached external ID to channel", zap.String("channel_id", existing.ID), zap.String("external_id", externalID))
		return existing.ID, nil
	}

	channel := &model.VideoChannel{ExternalID: &externalID, Link: link, Name: name}
	if err := r.repo.Create(ctx, channel); err != nil {
		return "", err
	}
	r.log.Info("created channel", zap.String("channel_id", channel.ID), zap.String("external_id", externalID))
	return channel.ID, nil
}
