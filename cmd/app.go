package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Taichi-iskw/enki/internal/cache"
	"github.com/Taichi-iskw/enki/internal/config"
	"github.com/Taichi-iskw/enki/internal/events"
	"github.com/Taichi-iskw/enki/internal/logging"
	"github.com/Taichi-iskw/enki/internal/repository"
	"github.com/Taichi-iskw/enki/internal/service/channel"
	"github.com/Taichi-iskw/enki/internal/service/media"
	"github.com/Taichi-iskw/enki/internal/service/youtube"
	"github.com/Taichi-iskw/enki/internal/storage"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	pool     *pgxpool.Pool
	channels repository.ChannelRepository
	resolver *channel.Resolver
	media    *media.Service
	closers  []func()
}

// newApp loads configuration and wires every component. Call Close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	pool, err := config.NewDatabasePool(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.pool = pool
	a.closers = append(a.closers, pool.Close)

	source, err := a.metadataSource(ctx)
	if err != nil {
		return err
	}

	a.channels = repository.NewChannelRepository(pool)
	a.resolver = channel.NewResolver(a.channels, source, a.log)

	opts := []media.Option{media.WithLogger(a.log)}

	if a.cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, a.cfg.S3Bucket, a.cfg.AWSRegion)
		if err != nil {
			return fmt.Errorf("failed to create image store: %w", err)
		}
		opts = append(opts, media.WithImageStore(store))
	}

	publisher, err := events.New(a.cfg.NATSURL, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.closers = append(a.closers, publisher.Close)
	opts = append(opts, media.WithEventPublisher(publisher))

	a.media = media.NewService(repository.NewMediaRepository(pool), source, a.resolver, opts...)
	return nil
}

// metadataSource builds the configured YouTube source, cached in Redis when configured
func (a *app) metadataSource(ctx context.Context) (youtube.Source, error) {
	var source youtube.Source
	switch a.cfg.MetadataSource {
	case config.MetadataSourceYtDlp:
		source = youtube.NewDLPSource()
	default:
		if a.cfg.YouTubeAPIKey == "" {
			reason := fmt.Sprintf("youtube_api_key is required when metadata_source is %q", config.MetadataSourceAPI)
			a.log.Warn("video metadata lookups disabled", zap.String("reason", reason))
			return youtube.UnavailableSource{Reason: reason}, nil
		}
		api, err := youtube.NewAPISource(ctx,
			[]option.ClientOption{option.WithAPIKey(a.cfg.YouTubeAPIKey)},
			youtube.WithCircuitBreaker(a.newBreaker("youtube-api")),
			youtube.WithLogger(a.log),
		)
		if err != nil {
			return nil, err
		}
		source = api
	}

	if a.cfg.RedisURL == "" {
		return source, nil
	}
	redisCache, err := cache.NewRedisCache(a.cfg.RedisURL, "enki:")
	if err != nil {
		return nil, fmt.Errorf("invalid redis_url: %w", err)
	}
	a.closers = append(a.closers, func() { _ = redisCache.Close() })
	return youtube.NewCachedSource(source, redisCache, a.log), nil
}

func (a *app) newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.log.Info("circuit-breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
