package channel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
)

// mockChannelRepository is a mock implementation of ChannelRepository for testing
type mockChannelRepository struct {
	mock.Mock
}

func (m *mockChannelRepository) Create(ctx context.Context, channel *model.VideoChannel) error {
	args := m.Called(ctx, channel)
	if args.Error(0) == nil {
		channel.ID = "new-channel"
	}
	return args.Error(0)
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id string) (*model.VideoChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoChannel), args.Error(1)
}

func (m *mockChannelRepository) FindByExternalID(ctx context.Context, externalID string) (*model.VideoChannel, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoChannel), args.Error(1)
}

func (m *mockChannelRepository) FindByURL(ctx context.Context, link string) (*model.VideoChannel, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoChannel), args.Error(1)
}

func (m *mockChannelRepository) UpdateExternalID(ctx context.Context, id, externalID string) error {
	args := m.Called(ctx, id, externalID)
	return args.Error(0)
}

func (m *mockChannelRepository) List(ctx context.Context, limit, offset int) ([]*model.VideoChannel, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.VideoChannel), args.Error(1)
}

// mockSource is a mock implementation of youtube.Source for testing
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

const (
	externalID = "UCuAXFkgsw1L7xaCfnd5JJOw"
	link       = "https://youtube.com/@RickAstleyYT"
)

func strPtr(s string) *string { return &s }

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(repo *mockChannelRepository)
		wantID   string
		wantCode string
	}{
		{
			name: "known external id performs no writes",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).
					Return(&model.VideoChannel{ID: "c1", ExternalID: strPtr(externalID), Link: link}, nil)
			},
			wantID: "c1",
		},
		{
			name: "channel known by link gets the external id attached",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil)
				repo.On("FindByURL", mock.Anything, link).
					Return(&model.VideoChannel{ID: "c2", Link: link, Name: "Rick"}, nil)
				repo.On("UpdateExternalID", mock.Anything, "c2", externalID).Return(nil)
			},
			wantID: "c2",
		},
		{
			name: "unknown channel is created",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil)
				repo.On("FindByURL", mock.Anything, link).Return(nil, nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.VideoChannel) bool {
					return *c.ExternalID == externalID && c.Link == link && c.Name == "Rick Astley"
				})).Return(nil)
			},
			wantID: "new-channel",
		},
		{
			name: "losing a create race returns the winning row",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil).Once()
				repo.On("FindByURL", mock.Anything, link).Return(nil, nil).Once()
				repo.On("Create", mock.Anything, mock.Anything).
					Return(errors.New(errors.CodeConflict, "channel with this external ID already exists"))
				repo.On("FindByExternalID", mock.Anything, externalID).
					Return(&model.VideoChannel{ID: "winner", ExternalID: strPtr(externalID)}, nil).Once()
			},
			wantID: "winner",
		},
		{
			name: "link conflict on create is retried as an attach",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil).Twice()
				repo.On("FindByURL", mock.Anything, link).Return(nil, nil).Once()
				repo.On("Create", mock.Anything, mock.Anything).
					Return(errors.New(errors.CodeConflict, "channel with this link already exists")).Once()
				repo.On("FindByURL", mock.Anything, link).
					Return(&model.VideoChannel{ID: "by-link", Link: link}, nil).Once()
				repo.On("UpdateExternalID", mock.Anything, "by-link", externalID).Return(nil)
			},
			wantID: "by-link",
		},
		{
			name: "storage failure propagates unchanged",
			setup: func(repo *mockChannelRepository) {
				repo.On("FindByExternalID", mock.Anything, externalID).
					Return(nil, errors.New(errors.CodeInternal, "boom"))
			},
			wantCode: errors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockChannelRepository{}
			tt.setup(repo)

			id, err := NewResolver(repo, nil, nil).Resolve(context.Background(), externalID, link, "Rick Astley")
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestResolver_Resolve_RequiresExternalID(t *testing.T) {
	_, err := NewResolver(&mockChannelRepository{}, nil, nil).Resolve(context.Background(), "", link, "x")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidArg))
}

func TestResolver_ResolveExternal(t *testing.T) {
	t.Run("known channel skips the metadata source", func(t *testing.T) {
		repo := &mockChannelRepository{}
		source := &mockSource{}
		repo.On("FindByExternalID", mock.Anything, externalID).
			Return(&model.VideoChannel{ID: "c1"}, nil)

		id, err := NewResolver(repo, source, nil).ResolveExternal(context.Background(), externalID)
		require.NoError(t, err)
		assert.Equal(t, "c1", id)
		source.AssertNotCalled(t, "FetchChannel", mock.Anything, mock.Anything)
	})

	t.Run("unknown channel is created from fetched metadata", func(t *testing.T) {
		repo := &mockChannelRepository{}
		source := &mockSource{}
		repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil)
		source.On("FetchChannel", mock.Anything, externalID).
			Return(&model.ChannelMetadata{ExternalID: externalID, Name: "Rick Astley", URL: link}, nil)
		repo.On("FindByURL", mock.Anything, link).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.VideoChannel) bool {
			return c.Link == link && c.Name == "Rick Astley"
		})).Return(nil)

		id, err := NewResolver(repo, source, nil).ResolveExternal(context.Background(), externalID)
		require.NoError(t, err)
		assert.Equal(t, "new-channel", id)
		repo.AssertExpectations(t)
		source.AssertExpectations(t)
	})

	t.Run("metadata failure is returned", func(t *testing.T) {
		repo := &mockChannelRepository{}
		source := &mockSource{}
		repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil)
		source.On("FetchChannel", mock.Anything, externalID).
			Return(nil, errors.New(errors.CodeExternal, "no item for key "+externalID))

		_, err := NewResolver(repo, source, nil).ResolveExternal(context.Background(), externalID)
		assert.True(t, errors.IsCode(err, errors.CodeExternal))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestResolver_ConcurrentFirstSightCreatesOnce(t *testing.T) {
	repo := &mockChannelRepository{}
	source := &mockSource{}

	var fetches int32
	repo.On("FindByExternalID", mock.Anything, externalID).Return(nil, nil).Once()
	// callers arriving after the shared call finished see the stored row
	repo.On("FindByExternalID", mock.Anything, externalID).
		Return(&model.VideoChannel{ID: "new-channel", ExternalID: strPtr(externalID)}, nil)
	source.On("FetchChannel", mock.Anything, externalID).
		Run(func(mock.Arguments) {
			atomic.AddInt32(&fetches, 1)
			time.Sleep(50 * time.Millisecond)
		}).
		Return(&model.ChannelMetadata{ExternalID: externalID, Name: "Rick Astley", URL: link}, nil)
	repo.On("FindByURL", mock.Anything, link).Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	resolver := NewResolver(repo, source, nil)

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = resolver.ResolveExternal(context.Background(), externalID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "new-channel", ids[i])
	}
	repo.AssertNumberOfCalls(t, "Create", 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestResolver_CancelledCallerDoesNotFailSharedResolution(t *testing.T) {
	repo := &mockChannelRepository{}
	started := make(chan struct{})
	release := make(chan struct{})

	var lookupCtx context.Context
	repo.On("FindByExternalID", mock.Anything, externalID).
		Run(func(args mock.Arguments) {
			lookupCtx = args.Get(0).(context.Context)
			close(started)
			<-release
		}).
		Return(&model.VideoChannel{ID: "existing", ExternalID: strPtr(externalID)}, nil).Once()

	resolver := NewResolver(repo, nil, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := resolver.ResolveExternal(firstCtx, externalID)
		firstErr <- err
	}()
	<-started

	type result struct {
		id  string
		err error
	}
	second := make(chan result, 1)
	go func() {
		id, err := resolver.ResolveExternal(context.Background(), externalID)
		second <- result{id, err}
	}()
	// let the second caller join the in-flight call
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	assert.NoError(t, lookupCtx.Err())

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "existing", res.id)
	repo.AssertNumberOfCalls(t, "FindByExternalID", 1)
}
