package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/service/media"
)

const mediaID = "0b7e5d4c-3f5a-4a61-9d0e-6f1f0a1c2b3d"

type mockMediaService struct {
	mock.Mock
}

func (m *mockMediaService) Create(ctx context.Context, req *media.CreateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockMediaService) List(ctx context.Context, req media.ListRequest) ([]model.Media, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Media), args.Error(1)
}

func (m *mockMediaService) Get(ctx context.Context, category model.Category, id string) (model.Media, error) {
	args := m.Called(ctx, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Media), args.Error(1)
}

func newTestRouter(svc MediaService, ready func(context.Context) error) chi.Router {
	return NewRouter(RouterConfig{Media: svc, ReadyFunc: ready})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthz(t *testing.T) {
	rr := serve(newTestRouter(&mockMediaService{}, nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		r := newTestRouter(&mockMediaService{}, func(context.Context) error { return nil })
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("database down", func(t *testing.T) {
		r := newTestRouter(&mockMediaService{}, func(context.Context) error { return assert.AnError })
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "NOT_READY", decodeError(t, rr).Code)
	})
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&mockMediaService{}, nil)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = serve(r, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")

	rr := serve(newTestRouter(&mockMediaService{}, nil), req)
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestListMedia(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   media.ListRequest
	}{
		{"no parameters", "/media", media.ListRequest{}},
		{"category and title", "/media?category=movie&title=matrix", media.ListRequest{Category: model.CategoryMovie, Title: "matrix"}},
		{
			"both id spellings",
			"/media?category=video&mediaId=" + mediaID + "&mediaId%5B%5D=" + mediaID,
			media.ListRequest{Category: model.CategoryVideo, IDs: []string{mediaID, mediaID}},
		},
		{"detailed flag", "/media?category=literary_work&detailed=true", media.ListRequest{Category: model.CategoryLiteraryWork, Detailed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{}
			svc.On("List", mock.Anything, tt.want).
				Return([]model.Media{&model.MediaItem{ID: mediaID, Category: model.CategoryMovie}}, nil)

			rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), mediaID)
			svc.AssertExpectations(t)
		})
	}
}

func TestListMedia_Errors(t *testing.T) {
	t.Run("bad detailed flag", func(t *testing.T) {
		rr := serve(newTestRouter(&mockMediaService{}, nil), httptest.NewRequest(http.MethodGet, "/media?detailed=maybe", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unsupported category", func(t *testing.T) {
		svc := &mockMediaService{}
		svc.On("List", mock.Anything, mock.Anything).
			Return(nil, apperrors.New(apperrors.CodeUnsupportedCategory, `media unsupported: "podcast"`))

		rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodGet, "/media?category=podcast", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeError(t, rr)
		assert.Equal(t, apperrors.CodeUnsupportedCategory, apiErr.Code)
		assert.NotEmpty(t, apiErr.RequestID)
	})

	t.Run("internal errors hide their message", func(t *testing.T) {
		svc := &mockMediaService{}
		svc.On("List", mock.Anything, mock.Anything).
			Return(nil, apperrors.New(apperrors.CodeInternal, "pq: connection refused"))

		rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodGet, "/media", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal server error", decodeError(t, rr).Message)
	})
}

func TestGetMedia(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &mockMediaService{}
		svc.On("Get", mock.Anything, model.CategoryVideoGame, mediaID).
			Return(&model.VideoGame{ID: mediaID, Title: model.IntlField{"en": {"Hades"}}}, nil)

		rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodGet, "/media/video_game/"+mediaID, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var got model.VideoGame
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, []string{"Hades"}, got.Title["en"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockMediaService{}
		svc.On("Get", mock.Anything, model.CategoryMovie, mediaID).
			Return(nil, apperrors.New(apperrors.CodeNotFound, "media not found"))

		rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodGet, "/media/movie/"+mediaID, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "media not found", decodeError(t, rr).Message)
	})
}

func TestCreateMedia_JSON(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		svcErr     error
		wantStatus int
		wantNoChk  bool
	}{
		{
			name:       "created",
			target:     "/media",
			body:       `{"category":"video_game","title":{"en":["Tetris"]}}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "noCheck query parameter",
			target:     "/media?noCheck=true",
			body:       `{"category":"video_game","title":{"en":["Tetris"]}}`,
			wantStatus: http.StatusCreated,
			wantNoChk:  true,
		},
		{
			name:       "conflict",
			target:     "/media",
			body:       `{"category":"video","link":"https://youtu.be/dQw4w9WgXcQ"}`,
			svcErr:     apperrors.New(apperrors.CodeConflict, "a video with this link already exists"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "external source failure",
			target:     "/media",
			body:       `{"category":"video","link":"https://youtu.be/dQw4w9WgXcQ"}`,
			svcErr:     apperrors.New(apperrors.CodeExternal, "no item for key dQw4w9WgXcQ"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "missing work",
			target:     "/media",
			body:       `{"category":"chapter","sourceId":"` + mediaID + `","number":1}`,
			svcErr:     apperrors.New(apperrors.CodeDependency, "referenced record does not exist"),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{}
			svc.On("Create", mock.Anything, mock.MatchedBy(func(req *media.CreateRequest) bool {
				return req.NoCheck == tt.wantNoChk
			})).Return("new-id", tt.svcErr)

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := serve(newTestRouter(svc, nil), req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "new-id", rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCreateMedia_InvalidBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"not json", `category=movie`, apperrors.CodeInvalidArg},
		{"missing category", `{"title":{"en":["x"]}}`, apperrors.CodeInvalidArg},
		{"unknown category", `{"category":"podcast"}`, apperrors.CodeUnsupportedCategory},
		{"field of another category", `{"category":"movie","title":{"en":["x"]},"link":"x"}`, apperrors.CodeInvalidArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{}
			rr := serve(newTestRouter(svc, nil), httptest.NewRequest(http.MethodPost, "/media", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateMedia_Multipart(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("body", `{"category":"video_game","title":{"en":["Celeste"]}}`))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	svc := &mockMediaService{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *media.CreateRequest) bool {
		game, ok := req.Media.(*media.VideoGameInput)
		return ok && game.Title["en"][0] == "Celeste" &&
			req.Image != nil && bytes.Equal(req.Image.Content, image) && req.Image.ContentType == "image/jpeg"
	})).Return("g1", nil)

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := serve(newTestRouter(svc, nil), req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "g1", rr.Body.String())
	svc.AssertExpectations(t)
}

func TestStatusOf(t *testing.T) {
	tests := map[string]int{
		apperrors.CodeInvalidArg:          http.StatusBadRequest,
		apperrors.CodeUnsupportedCategory: http.StatusBadRequest,
		apperrors.CodeNotFound:            http.StatusNotFound,
		apperrors.CodeConflict:            http.StatusConflict,
		apperrors.CodeDependency:          http.StatusUnprocessableEntity,
		apperrors.CodeExternal:            http.StatusBadGateway,
		apperrors.CodeInternal:            http.StatusInternalServerError,
		"SOMETHING_ELSE":                  http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusOf(code), code)
	}
}
