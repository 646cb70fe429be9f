package model

import "time"

// Category identifies the concrete kind of a media item
type Category string

const (
	CategoryChapter      Category = "chapter"
	CategoryLiteraryWork Category = "literary_work"
	CategoryMovie        Category = "movie"
	CategoryVideo        Category = "video"
	CategoryVideoGame    Category = "video_game"
)

// Categories lists every supported category in declaration order
var Categories = []Category{
	CategoryChapter,
	CategoryLiteraryWork,
	CategoryMovie,
	CategoryVideo,
	CategoryVideoGame,
}

// Valid reports whether c is one of the supported categories
func (c Category) Valid() bool {
	switch c {
	case CategoryChapter, CategoryLiteraryWork, CategoryMovie, CategoryVideo, CategoryVideoGame:
		return true
	}
	return false
}

// LiteraryWorkType is the narrative form of a literary work
type LiteraryWorkType string

const (
	LiteraryWorkArticle      LiteraryWorkType = "article"
	LiteraryWorkBiography    LiteraryWorkType = "biography"
	LiteraryWorkComics       LiteraryWorkType = "comics"
	LiteraryWorkDiary        LiteraryWorkType = "diary"
	LiteraryWorkEpic         LiteraryWorkType = "epic"
	LiteraryWorkEssay        LiteraryWorkType = "essay"
	LiteraryWorkFlashFiction LiteraryWorkType = "flash_fiction"
	LiteraryWorkGraphicNovel LiteraryWorkType = "graphic_novel"
	LiteraryWorkJournal      LiteraryWorkType = "journal"
	LiteraryWorkLightNovel   LiteraryWorkType = "light_novel"
	LiteraryWorkManga        LiteraryWorkType = "manga"
	LiteraryWorkManhua       LiteraryWorkType = "manhua"
	LiteraryWorkManhwa       LiteraryWorkType = "manhwa"
	LiteraryWorkMemoir       LiteraryWorkType = "memoir"
	LiteraryWorkNovel        LiteraryWorkType = "novel"
	LiteraryWorkNovelette    LiteraryWorkType = "novelette"
	LiteraryWorkNovella      LiteraryWorkType = "novella"
	LiteraryWorkPoetry       LiteraryWorkType = "poetry"
	LiteraryWorkScript       LiteraryWorkType = "script"
	LiteraryWorkShortStory   LiteraryWorkType = "short_story"
	LiteraryWorkWebNovel     LiteraryWorkType = "web_novel"
	LiteraryWorkWebtoon      LiteraryWorkType = "webtoon"
)

var literaryWorkTypes = map[LiteraryWorkType]struct{}{
	LiteraryWorkArticle: {}, LiteraryWorkBiography: {}, LiteraryWorkComics: {}, LiteraryWorkDiary: {},
	LiteraryWorkEpic: {}, LiteraryWorkEssay: {}, LiteraryWorkFlashFiction: {}, LiteraryWorkGraphicNovel: {},
	LiteraryWorkJournal: {}, LiteraryWorkLightNovel: {}, LiteraryWorkManga: {}, LiteraryWorkManhua: {},
	LiteraryWorkManhwa: {}, LiteraryWorkMemoir: {}, LiteraryWorkNovel: {}, LiteraryWorkNovelette: {},
	LiteraryWorkNovella: {}, LiteraryWorkPoetry: {}, LiteraryWorkScript: {}, LiteraryWorkShortStory: {},
	LiteraryWorkWebNovel: {}, LiteraryWorkWebtoon: {},
}

// Valid reports whether t is a known narrative form
func (t LiteraryWorkType) Valid() bool {
	_, ok := literaryWorkTypes[t]
	return ok
}

// IntlField maps a language code to its ordered list of variants
type IntlField map[string][]string

// DefaultLanguage is the key used for titles that come without language information
const DefaultLanguage = "default"

// Media is implemented by every row the catalog can return
type Media interface {
	MediaCategory() Category
}

// MediaItem is the shallow projection shared by every category
type MediaItem struct {
	ID          string     `json:"id" db:"id"`
	Title       IntlField  `json:"title" db:"title"`
	Category    Category   `json:"category" db:"category"`
	ReleaseDate *time.Time `json:"releaseDate" db:"release_date"`
}

func (m *MediaItem) MediaCategory() Category { return m.Category }

// Chapter is a single chapter of a literary work
type Chapter struct {
	ID          string     `json:"id" db:"id"`
	SourceID    string     `json:"sourceId" db:"source_id"`
	Number      int        `json:"number" db:"number"`
	Title       IntlField  `json:"title,omitempty" db:"title"`
	Pages       *int       `json:"pages,omitempty" db:"pages"`
	ReadingTime *int       `json:"readingTime,omitempty" db:"reading_time"` // seconds
	ReleaseDate *time.Time `json:"releaseDate,omitempty" db:"release_date"`
	Image       *string    `json:"image,omitempty" db:"image"`
}

func (*Chapter) MediaCategory() Category { return CategoryChapter }

// ChapterSummary is the chapter shape aggregated under a literary work
type ChapterSummary struct {
	ID          string     `json:"id"`
	Title       IntlField  `json:"title"`
	Number      int        `json:"number"`
	Pages       *int       `json:"pages"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

// LiteraryWork is a book, comic, web novel or any other written work
type LiteraryWork struct {
	ID       string           `json:"id" db:"id"`
	Title    IntlField        `json:"title" db:"title"`
	Synopsis IntlField        `json:"synopsis,omitempty" db:"synopsis"`
	Type     LiteraryWorkType `json:"type" db:"type"`
	Tags     []string         `json:"tags" db:"tags"`
	Ongoing  bool             `json:"ongoing" db:"ongoing"`
	Image    *string          `json:"image,omitempty" db:"image"`
	// Chapters is ordered by number and never nil on rows read back from storage
	Chapters []ChapterSummary `json:"chapters"`
}

func (*LiteraryWork) MediaCategory() Category { return CategoryLiteraryWork }

// Movie represents a feature film
type Movie struct {
	ID          string     `json:"id" db:"id"`
	Title       IntlField  `json:"title" db:"title"`
	Duration    *int       `json:"duration" db:"duration"` // seconds
	ReleaseDate *time.Time `json:"releaseDate" db:"release_date"`
	Image       *string    `json:"image,omitempty" db:"image"`
}

func (*Movie) MediaCategory() Category { return CategoryMovie }

// Video represents a video hosted on an external platform
type Video struct {
	ID          string     `json:"id" db:"id"`
	Title       IntlField  `json:"title" db:"title"`
	Link        string     `json:"link" db:"link"`
	Duration    int        `json:"duration" db:"duration"` // seconds
	ChannelID   string     `json:"channelId" db:"channel_id"`
	PlaylistID  *string    `json:"playlistId" db:"playlist_id"`
	ReleaseDate *time.Time `json:"releaseDate" db:"release_date"`
	Image       *string    `json:"image,omitempty" db:"image"`
}

func (*Video) MediaCategory() Category { return CategoryVideo }

// VideoGame carries nothing but a title
type VideoGame struct {
	ID    string    `json:"id" db:"id"`
	Title IntlField `json:"title" db:"title"`
	Image *string   `json:"image,omitempty" db:"image"`
}

func (*VideoGame) MediaCategory() Category { return CategoryVideoGame }
