// Package httpapi exposes the media catalog over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/enki/internal/logging"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/service/media"
)

// MediaService is the part of media.Service the handlers use
type MediaService interface {
	Create(ctx context.Context, req *media.CreateRequest) (string, error)
	List(ctx context.Context, req media.ListRequest) ([]model.Media, error)
	Get(ctx context.Context, category model.Category, id string) (model.Media, error)
}

type RouterConfig struct {
	Media MediaService
	// ReadyFunc reports whether dependencies are reachable; nil means always ready
	ReadyFunc func(ctx context.Context) error
	Logger    *zap.Logger
	// AllowedOrigins defaults to "*"
	AllowedOrigins []string
}

// NewRouter builds the chi router with base middlewares, health endpoints and media routes
func NewRouter(cfg RouterConfig) chi.Router {
	log := logging.OrNop(cfg.Logger)
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadyFunc != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.ReadyFunc(ctx); err != nil {
				WriteError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), RequestIDFromContext(r.Context()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	h := &mediaHandler{svc: cfg.Media, log: log}
	r.Get("/media", h.list)
	r.Post("/media", h.create)
	r.Get("/media/{category}/{id}", h.get)

	return r
}
