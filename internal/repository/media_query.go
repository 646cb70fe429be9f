package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	shallowColumns = "media.id, media.title, media.category, media.release_date"
	chapterColumns = "media.id, media.title, media.source_id, media.number, media.pages, media.reading_time, media.release_date, media.image"
	movieColumns   = "media.id, media.title, media.duration, media.release_date, media.image"
	videoColumns   = "media.id, media.title, media.link, media.duration, media.channel_id, media.playlist_id, media.release_date, media.image"
	gameColumns    = "media.id, media.title, media.image"

	literaryWorkColumns = `media.id, media.title, media.synopsis, media.type, media.tags, media.ongoing, media.image,
COALESCE(
  json_agg(json_build_object(
    'id', lwc.id,
    'title', lwc.title,
    'number', lwc.number,
    'pages', lwc.pages,
    'releaseDate', lwc.release_date
  ) ORDER BY lwc.number) FILTER (WHERE lwc.id IS NOT NULL),
  '[]'
) AS chapters`
)

// detailQuery describes how one category is read in detailed mode
type detailQuery struct {
	from    string
	groupBy string
	scan    func(row pgx.Row) (model.Media, error)
}

var detailQueries = map[model.Category]detailQuery{
	model.CategoryChapter: {
		from: "SELECT " + chapterColumns + " FROM literary_work_chapters AS media",
		scan: scanChapter,
	},
	model.CategoryLiteraryWork: {
		from:    "SELECT " + literaryWorkColumns + " FROM literary_works AS media LEFT JOIN literary_work_chapters AS lwc ON lwc.source_id = media.id",
		groupBy: "media.id",
		scan:    scanLiteraryWork,
	},
	model.CategoryMovie: {
		from: "SELECT " + movieColumns + " FROM movies AS media",
		scan: scanMovie,
	},
	model.CategoryVideo: {
		from: "SELECT " + videoColumns + " FROM videos AS media",
		scan: scanVideo,
	},
	model.CategoryVideoGame: {
		from: "SELECT " + gameColumns + " FROM video_games AS media",
		scan: scanVideoGame,
	},
}

// Find runs either the shallow or the detailed listing
func (r *mediaRepository) Find(ctx context.Context, query FindQuery) ([]model.Media, error) {
	var (
		b    selectBuilder
		scan func(row pgx.Row) (model.Media, error)
	)

	if query.Shallow {
		b.from = "SELECT " + shallowColumns + " FROM media_items AS media"
		scan = scanMediaItem
		if query.Category != "" {
			if !query.Category.Valid() {
				return nil, unsupportedCategory(query.Category)
			}
			b.where("media.category = " + b.arg(string(query.Category)))
		}
	} else {
		if query.Category == "" {
			return nil, apperrors.New(apperrors.CodeInvalidArg, "either do a shallow search or send a category")
		}
		dq, ok := detailQueries[query.Category]
		if !ok {
			return nil, unsupportedCategory(query.Category)
		}
		b.from = dq.from
		b.groupBy = dq.groupBy
		scan = dq.scan
	}

	applyFilter(&b, query.Filter)

	sql, args := b.build()
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list media")
	}
	defer rows.Close()

	media := []model.Media{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan media row")
		}
		media = append(media, item)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate media rows")
	}

	return media, nil
}

// FindByID reads a single detailed row
func (r *mediaRepository) FindByID(ctx context.Context, category model.Category, id string) (model.Media, error) {
	media, err := r.Find(ctx, FindQuery{
		Category: category,
		Filter:   MediaFilter{IDs: []string{id}},
	})
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return nil, nil
	}
	return media[0], nil
}

func applyFilter(b *selectBuilder, filter MediaFilter) {
	if len(filter.IDs) > 0 {
		b.where("media.id = ANY(" + b.arg(filter.IDs) + "::uuid[])")
	}
	if filter.Title != "" {
		pattern := "%" + escapeLike(filter.Title) + "%"
		b.where(`EXISTS (
  SELECT 1 FROM jsonb_each(media.title) AS kv(lang, variants),
  jsonb_array_elements_text(kv.variants) AS variant
  WHERE variant ILIKE ` + b.arg(pattern) + `
)`)
	}
}

// escapeLike makes LIKE metacharacters match literally (backslash is the default escape)
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func unsupportedCategory(c model.Category) error {
	return apperrors.New(apperrors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %q", string(c)))
}

// selectBuilder assembles a SELECT with positional arguments
type selectBuilder struct {
	from       string
	conditions []string
	groupBy    string
	args       []any
}

func (b *selectBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *selectBuilder) where(cond string) {
	b.conditions = append(b.conditions, cond)
}

func (b *selectBuilder) build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(b.from)
	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conditions, " AND "))
	}
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
	}
	sb.WriteString(" ORDER BY media.created_at DESC")
	return sb.String(), b.args
}

func scanMediaItem(row pgx.Row) (model.Media, error) {
	var (
		m        model.MediaItem
		title    []byte
		category string
	)
	if err := row.Scan(&m.ID, &title, &category, &m.ReleaseDate); err != nil {
		return nil, err
	}
	m.Category = model.Category(category)
	return &m, decodeJSON(title, &m.Title)
}

func scanChapter(row pgx.Row) (model.Media, error) {
	var (
		c     model.Chapter
		title []byte
	)
	if err := row.Scan(&c.ID, &title, &c.SourceID, &c.Number, &c.Pages, &c.ReadingTime, &c.ReleaseDate, &c.Image); err != nil {
		return nil, err
	}
	return &c, decodeJSON(title, &c.Title)
}

func scanLiteraryWork(row pgx.Row) (model.Media, error) {
	var (
		w                         model.LiteraryWork
		title, synopsis, chapters []byte
		workType                  string
	)
	if err := row.Scan(&w.ID, &title, &synopsis, &workType, &w.Tags, &w.Ongoing, &w.Image, &chapters); err != nil {
		return nil, err
	}
	w.Type = model.LiteraryWorkType(workType)
	if err := decodeJSON(title, &w.Title); err != nil {
		return nil, err
	}
	if err := decodeJSON(synopsis, &w.Synopsis); err != nil {
		return nil, err
	}
	if err := decodeJSON(chapters, &w.Chapters); err != nil {
		return nil, err
	}
	if w.Chapters == nil {
		w.Chapters = []model.ChapterSummary{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return &w, nil
}

func scanMovie(row pgx.Row) (model.Media, error) {
	var (
		m     model.Movie
		title []byte
	)
	if err := row.Scan(&m.ID, &title, &m.Duration, &m.ReleaseDate, &m.Image); err != nil {
		return nil, err
	}
	return &m, decodeJSON(title, &m.Title)
}

func scanVideo(row pgx.Row) (model.Media, error) {
	var (
		v     model.Video
		title []byte
	)
	if err := row.Scan(&v.ID, &title, &v.Link, &v.Duration, &v.ChannelID, &v.PlaylistID, &v.ReleaseDate, &v.Image); err != nil {
		return nil, err
	}
	return &v, decodeJSON(title, &v.Title)
}

func scanVideoGame(row pgx.Row) (model.Media, error) {
	var (
		g     model.VideoGame
		title []byte
	)
	if err := row.Scan(&g.ID, &title, &g.Image); err != nil {
		return nil, err
	}
	return &g, decodeJSON(title, &g.Title)
}

// decodeJSON leaves dest untouched for SQL NULL
func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
