package repository

import (
	"context"

	"github.com/Taichi-iskw/enki/internal/model"
)

// MediaFilter narrows listing queries. Zero values mean "no restriction".
type MediaFilter struct {
	// IDs restricts results to the given media IDs
	IDs []string
	// Title matches case-insensitively against every variant of every language
	Title string
}

// FindQuery selects between the shallow cross-category listing and the
// detailed single-category listing
type FindQuery struct {
	Shallow  bool
	Category model.Category // optional when Shallow, required otherwise
	Filter   MediaFilter
}

// MediaRepository defines category-aware persistence for every media kind
type MediaRepository interface {
	// Create inserts a row into the table matching the concrete media type and returns its ID
	Create(ctx context.Context, media model.Media) (string, error)

	// CreateLiteraryWork inserts a work and, when chapters > 0, its placeholder
	// chapters 1..chapters in the same transaction
	CreateLiteraryWork(ctx context.Context, work *model.LiteraryWork, chapters int) (string, error)

	// CreateChapters bulk-creates untitled chapters 1..count for a work in one statement
	CreateChapters(ctx context.Context, workID string, count int) error

	// Find lists media newest first
	Find(ctx context.Context, query FindQuery) ([]model.Media, error)

	// FindByID returns the detailed row for a category/ID pair, or nil
	FindByID(ctx context.Context, category model.Category, id string) (model.Media, error)

	// FindChapter returns the chapter with the given number in a work, or nil
	FindChapter(ctx context.Context, sourceID string, number int) (*model.Chapter, error)

	// FindVideoByURL returns the video with the given canonical link, or nil
	FindVideoByURL(ctx context.Context, link string) (*model.Video, error)
}
