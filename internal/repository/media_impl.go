package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/jackc/pgx/v5"
)

// mediaRepository implements MediaRepository using PostgreSQL
type mediaRepository struct {
	pool Pool
}

// NewMediaRepository creates a new instance of MediaRepository
func NewMediaRepository(pool Pool) MediaRepository {
	return &mediaRepository{
		pool: pool,
	}
}

// Create dispatches the insert to the table of the concrete media type
func (r *mediaRepository) Create(ctx context.Context, media model.Media) (string, error) {
	switch m := media.(type) {
	case *model.Chapter:
		return insertChapter(ctx, r.pool, m)
	case *model.LiteraryWork:
		return insertLiteraryWork(ctx, r.pool, m)
	case *model.Movie:
		return insertMovie(ctx, r.pool, m)
	case *model.Video:
		return insertVideo(ctx, r.pool, m)
	case *model.VideoGame:
		return insertVideoGame(ctx, r.pool, m)
	default:
		return "", apperrors.New(apperrors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %T", media))
	}
}

// CreateLiteraryWork inserts a work and its placeholder chapters atomically
func (r *mediaRepository) CreateLiteraryWork(ctx context.Context, work *model.LiteraryWork, chapters int) (string, error) {
	if chapters < 0 {
		return "", apperrors.New(apperrors.CodeInvalidArg, "chapter count must not be negative")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", handlePostgreSQLError(err, "failed to begin transaction")
	}

	id, err := insertLiteraryWork(ctx, tx, work)
	if err != nil {
		_ = tx.Rollback(ctx)
		return "", err
	}

	if chapters > 0 {
		if err := createChapters(ctx, tx, id, chapters); err != nil {
			_ = tx.Rollback(ctx)
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", handlePostgreSQLError(err, "failed to commit literary work")
	}
	return id, nil
}

// CreateChapters bulk-creates untitled chapters for a work
func (r *mediaRepository) CreateChapters(ctx context.Context, workID string, count int) error {
	if count <= 0 {
		return apperrors.New(apperrors.CodeInvalidArg, "chapter count must be positive")
	}
	return createChapters(ctx, r.pool, workID, count)
}

// FindChapter retrieves a chapter by work and number
func (r *mediaRepository) FindChapter(ctx context.Context, sourceID string, number int) (*model.Chapter, error) {
	sql := "SELECT " + chapterColumns + " FROM literary_work_chapters AS media WHERE media.source_id = $1 AND media.number = $2"
	media, err := scanChapter(r.pool.QueryRow(ctx, sql, sourceID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get chapter")
	}
	return media.(*model.Chapter), nil
}

// FindVideoByURL retrieves a video by its canonical link
func (r *mediaRepository) FindVideoByURL(ctx context.Context, link string) (*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos AS media WHERE media.link = $1"
	media, err := scanVideo(r.pool.QueryRow(ctx, sql, link))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, handlePostgreSQLError(err, "failed to get video by URL")
	}
	return media.(*model.Video), nil
}

func createChapters(ctx context.Context, q querier, workID string, count int) error {
	sql := `INSERT INTO literary_work_chapters (source_id, number)
SELECT $1, n FROM generate_series(1, $2::int) AS n`
	if _, err := q.Exec(ctx, sql, workID, count); err != nil {
		return handlePostgreSQLError(err, "failed to create chapters")
	}
	return nil
}

func insertChapter(ctx context.Context, q querier, c *model.Chapter) (string, error) {
	sql := `INSERT INTO literary_work_chapters (source_id, number, title, pages, reading_time, release_date, image)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return insertReturningID(ctx, q, "chapter", sql,
		c.SourceID, c.Number, intlArg(c.Title), c.Pages, c.ReadingTime, c.ReleaseDate, c.Image)
}

func insertLiteraryWork(ctx context.Context, q querier, w *model.LiteraryWork) (string, error) {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	sql := `INSERT INTO literary_works (title, synopsis, type, tags, ongoing, image)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return insertReturningID(ctx, q, "literary work", sql,
		intlArg(w.Title), intlArg(w.Synopsis), string(w.Type), tags, w.Ongoing, w.Image)
}

func insertMovie(ctx context.Context, q querier, m *model.Movie) (string, error) {
	sql := `INSERT INTO movies (title, duration, release_date, image)
VALUES ($1, $2, $3, $4) RETURNING id`
	return insertReturningID(ctx, q, "movie", sql,
		intlArg(m.Title), m.Duration, m.ReleaseDate, m.Image)
}

func insertVideo(ctx context.Context, q querier, v *model.Video) (string, error) {
	sql := `INSERT INTO videos (title, link, duration, channel_id, playlist_id, release_date, image)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return insertReturningID(ctx, q, "video", sql,
		intlArg(v.Title), v.Link, v.Duration, v.ChannelID, v.PlaylistID, v.ReleaseDate, v.Image)
}

func insertVideoGame(ctx context.Context, q querier, g *model.VideoGame) (string, error) {
	sql := `INSERT INTO video_games (title, image) VALUES ($1, $2) RETURNING id`
	return insertReturningID(ctx, q, "video game", sql, intlArg(g.Title), g.Image)
}

func insertReturningID(ctx context.Context, q querier, kind, sql string, args ...any) (string, error) {
	var id string
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return "", handlePostgreSQLError(err, "failed to create "+kind)
	}
	return id, nil
}

// intlArg keeps absent translations as SQL NULL instead of JSON null
func intlArg(f model.IntlField) any {
	if f == nil {
		return nil
	}
	return f
}
