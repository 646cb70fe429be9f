// Package media turns generic create and list requests into category-specific
// repository calls.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/repository"
	"github.com/Taichi-iskw/enki/internal/service/youtube"
)

// ImageStore uploads raw image content and returns its public URL
type ImageStore interface {
	PutImage(ctx context.Context, content []byte, contentType string) (string, error)
}

// EventPublisher announces created media
type EventPublisher interface {
	PublishMediaCreated(ctx context.Context, id string, category model.Category) error
}

// ChannelResolver maps an external channel ID to a catalog channel ID
type ChannelResolver interface {
	ResolveExternal(ctx context.Context, externalID string) (string, error)
}

// Service is the media ingestion and query entry point
type Service struct {
	repo     repository.MediaRepository
	source   youtube.Source
	channels ChannelResolver
	images   ImageStore
	events   EventPublisher
	log      *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithImageStore enables uploads of raw image content
func WithImageStore(store ImageStore) Option {
	return func(s *Service) { s.images = store }
}

// WithEventPublisher publishes media.created after every successful create
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a new media Service
func NewService(repo repository.MediaRepository, source youtube.Source, channels ChannelResolver, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		source:   source,
		channels: channels,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates the request, dispatches it on its category and returns the new media ID
func (s *Service) Create(ctx context.Context, req *CreateRequest) (string, error) {
	if req == nil || req.Media == nil {
		return "", errors.New(errors.CodeInvalidArg, "media is required")
	}
	if err := req.Media.Validate(); err != nil {
		return "", err
	}

	image, err := s.resolveImage(ctx, req.Image)
	if err != nil {
		return "", err
	}

	var id string
	switch in := req.Media.(type) {
	case *ChapterInput:
		id, err = s.createChapter(ctx, in, image, req.NoCheck)
	case *LiteraryWorkInput:
		id, err = s.createLiteraryWork(ctx, in, image)
	case *MovieInput:
		id, err = s.createMovie(ctx, in, image)
	case *VideoInput:
		id, err = s.createVideo(ctx, in, image, req.NoCheck)
	case *VideoGameInput:
		id, err = s.repo.Create(ctx, &model.VideoGame{Title: in.Title, Image: image})
	default:
		return "", errors.New(errors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %T", req.Media))
	}
	if err != nil {
		return "", err
	}

	category := req.Media.Category()
	s.log.Info("media created", zap.String("media_id", id), zap.String("category", string(category)))

	if s.events != nil {
		if err := s.events.PublishMediaCreated(ctx, id, category); err != nil {
			s.log.Warn("failed to publish media.created", zap.String("media_id", id), zap.Error(err))
		}
	}
	return id, nil
}

func (s *Service) resolveImage(ctx context.Context, image *Image) (*string, error) {
	if image == nil {
		return nil, nil
	}
	if len(image.Content) == 0 {
		if image.URL == "" {
			return nil, nil
		}
		return &image.URL, nil
	}

	if s.images == nil {
		return nil, errors.New(errors.CodeInvalidArg, "image storage is not configured")
	}
	url, err := s.images.PutImage(ctx, image.Content, image.ContentType)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *Service) createChapter(ctx context.Context, in *ChapterInput, image *string, noCheck bool) (string, error) {
	if !noCheck {
		existing, err := s.repo.FindChapter(ctx, in.SourceID, in.Number)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", errors.New(errors.CodeConflict, "this chapter already exists")
		}
	}

	return s.repo.Create(ctx, &model.Chapter{
		SourceID:    in.SourceID,
		Number:      in.Number,
		Title:       in.Title,
		Pages:       in.Pages,
		ReadingTime: in.ReadingTime,
		ReleaseDate: in.ReleaseDate,
		Image:       image,
	})
}

func (s *Service) createLiteraryWork(ctx context.Context, in *LiteraryWorkInput, image *string) (string, error) {
	work := &model.LiteraryWork{
		Title:    in.Title,
		Synopsis: in.Synopsis,
		Type:     in.Type,
		Tags:     in.Tags,
		Ongoing:  in.Ongoing,
		Image:    image,
	}
	return s.repo.CreateLiteraryWork(ctx, work, in.CurrentChapters)
}

func (s *Service) createMovie(ctx context.Context, in *MovieInput, image *string) (string, error) {
	duration, err := ParseDuration(in.Duration)
	if err != nil {
		return "", err
	}

	return s.repo.Create(ctx, &model.Movie{
		Title:       in.Title,
		Duration:    duration,
		ReleaseDate: in.ReleaseDate,
		Image:       image,
	})
}

func (s *Service) createVideo(ctx context.Context, in *VideoInput, image *string, noCheck bool) (string, error) {
	link, err := youtube.ShortURL(in.Link)
	if err != nil {
		return "", err
	}

	if !noCheck {
		existing, err := s.repo.FindVideoByURL(ctx, link)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", errors.New(errors.CodeConflict, "a video with this link already exists")
		}
	}

	meta, err := s.source.FetchVideo(ctx, youtube.VideoIDFromShortURL(link))
	if err != nil {
		return "", err
	}

	duration, err := ParseDuration(meta.Duration)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "video source returned an invalid duration")
	}
	seconds := 0
	if duration != nil {
		seconds = *duration
	}

	var releaseDate *time.Time
	if meta.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, meta.PublishedAt)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeExternal, "video source returned an invalid publish date")
		}
		releaseDate = &t
	}

	channelID, err := s.channels.ResolveExternal(ctx, meta.ChannelExternalID)
	if err != nil {
		return "", err
	}

	return s.repo.Create(ctx, &model.Video{
		Title:       model.IntlField{model.DefaultLanguage: {meta.Title}},
		Link:        link,
		Duration:    seconds,
		ChannelID:   channelID,
		ReleaseDate: releaseDate,
		Image:       image,
	})
}

// ListRequest selects media for listing
type ListRequest struct {
	Category model.Category
	IDs      []string
	Title    string
	// Detailed asks for category-specific rows; it is implied by IDs combined with a Category
	Detailed bool
}

// List returns shallow items across categories, or detailed rows of one category
func (s *Service) List(ctx context.Context, req ListRequest) ([]model.Media, error) {
	if req.Category != "" && !req.Category.Valid() {
		return nil, errors.New(errors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %q", string(req.Category)))
	}
	for _, id := range req.IDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, errors.New(errors.CodeInvalidArg, fmt.Sprintf("invalid media ID %q", id))
		}
	}

	detailed := req.Detailed || (len(req.IDs) > 0 && req.Category != "")

	return s.repo.Find(ctx, repository.FindQuery{
		Shallow:  !detailed,
		Category: req.Category,
		Filter:   repository.MediaFilter{IDs: req.IDs, Title: req.Title},
	})
}

// Get returns the detailed row of one media item
func (s *Service) Get(ctx context.Context, category model.Category, id string) (model.Media, error) {
	if !category.Valid() {
		return nil, errors.New(errors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %q", string(category)))
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.CodeNotFound, "media not found")
	}

	media, err := s.repo.FindByID(ctx, category, id)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, errors.New(errors.CodeNotFound, "media not found")
	}
	return media, nil
}
