package media

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/repository"
)

// mockMediaRepository is a mock implementation of MediaRepository for testing
type mockMediaRepository struct {
	mock.Mock
}

func (m *mockMediaRepository) Create(ctx context.Context, media model.Media) (string, error) {
	args := m.Called(ctx, media)
	return args.String(0), args.Error(1)
}

func (m *mockMediaRepository) CreateLiteraryWork(ctx context.Context, work *model.LiteraryWork, chapters int) (string, error) {
	args := m.Called(ctx, work, chapters)
	return args.String(0), args.Error(1)
}

func (m *mockMediaRepository) CreateChapters(ctx context.Context, workID string, count int) error {
	args := m.Called(ctx, workID, count)
	return args.Error(0)
}

func (m *mockMediaRepository) Find(ctx context.Context, query repository.FindQuery) ([]model.Media, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Media), args.Error(1)
}

func (m *mockMediaRepository) FindByID(ctx context.Context, category model.Category, id string) (model.Media, error) {
	args := m.Called(ctx, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Media), args.Error(1)
}

func (m *mockMediaRepository) FindChapter(ctx context.Context, sourceID string, number int) (*model.Chapter, error) {
	args := m.Called(ctx, sourceID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Chapter), args.Error(1)
}

func (m *mockMediaRepository) FindVideoByURL(ctx context.Context, link string) (*model.Video, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoMetadata), args.Error(1)
}

func (m *mockSource) FetchChannel(ctx context.Context, externalID string) (*model.ChannelMetadata, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChannelMetadata), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveExternal(ctx context.Context, externalID string) (string, error) {
	args := m.Called(ctx, externalID)
	return args.String(0), args.Error(1)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) PutImage(ctx context.Context, content []byte, contentType string) (string, error) {
	args := m.Called(ctx, content, contentType)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMediaCreated(ctx context.Context, id string, category model.Category) error {
	args := m.Called(ctx, id, category)
	return args.Error(0)
}
