package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
)

// Input is the category-specific part of a create request.
// The set of implementations is closed; see the unexported marker method.
type Input interface {
	Category() model.Category
	Validate() error
	isInput()
}

// ChapterInput creates a single chapter of an existing literary work
type ChapterInput struct {
	SourceID    string          `json:"sourceId"`
	Number      int             `json:"number"`
	Title       model.IntlField `json:"title,omitempty"`
	Pages       *int            `json:"pages,omitempty"`
	ReadingTime *int            `json:"readingTime,omitempty"`
	ReleaseDate *time.Time      `json:"releaseDate,omitempty"`
}

// LiteraryWorkInput creates a work and, optionally, its first CurrentChapters chapters
type LiteraryWorkInput struct {
	Title           model.IntlField        `json:"title"`
	Synopsis        model.IntlField        `json:"synopsis,omitempty"`
	Type            model.LiteraryWorkType `json:"type"`
	Tags            []string               `json:"tags,omitempty"`
	Ongoing         bool                   `json:"ongoing,omitempty"`
	CurrentChapters int                    `json:"currentChapters,omitempty"`
}

// MovieInput creates a movie; Duration is an ISO-8601 duration
type MovieInput struct {
	Title       model.IntlField `json:"title"`
	Duration    string          `json:"duration,omitempty"`
	ReleaseDate *time.Time      `json:"releaseDate,omitempty"`
}

// VideoInput creates a video from its link; everything else is fetched
type VideoInput struct {
	Link string `json:"link"`
}

// VideoGameInput creates a video game
type VideoGameInput struct {
	Title model.IntlField `json:"title"`
}

func (*ChapterInput) Category() model.Category      { return model.CategoryChapter }
func (*LiteraryWorkInput) Category() model.Category { return model.CategoryLiteraryWork }
func (*MovieInput) Category() model.Category        { return model.CategoryMovie }
func (*VideoInput) Category() model.Category        { return model.CategoryVideo }
func (*VideoGameInput) Category() model.Category    { return model.CategoryVideoGame }

func (*ChapterInput) isInput()      {}
func (*LiteraryWorkInput) isInput() {}
func (*MovieInput) isInput()        {}
func (*VideoInput) isInput()        {}
func (*VideoGameInput) isInput()    {}

func (in *ChapterInput) Validate() error {
	if _, err := uuid.Parse(in.SourceID); err != nil {
		return errors.New(errors.CodeInvalidArg, "sourceId must be a literary work ID")
	}
	if in.Number < 0 {
		return errors.New(errors.CodeInvalidArg, "number must not be negative")
	}
	if in.Pages != nil && *in.Pages < 0 {
		return errors.New(errors.CodeInvalidArg, "pages must not be negative")
	}
	if in.ReadingTime != nil && *in.ReadingTime < 0 {
		return errors.New(errors.CodeInvalidArg, "readingTime must not be negative")
	}
	return validateTitle(in.Title, false)
}

func (in *LiteraryWorkInput) Validate() error {
	if !in.Type.Valid() {
		return errors.New(errors.CodeInvalidArg, fmt.Sprintf("unknown literary work type %q", string(in.Type)))
	}
	if in.CurrentChapters < 0 {
		return errors.New(errors.CodeInvalidArg, "currentChapters must not be negative")
	}
	return validateTitle(in.Title, true)
}

func (in *MovieInput) Validate() error {
	return validateTitle(in.Title, true)
}

func (in *VideoInput) Validate() error {
	if in.Link == "" {
		return errors.New(errors.CodeInvalidArg, "link is required")
	}
	return nil
}

func (in *VideoGameInput) Validate() error {
	return validateTitle(in.Title, true)
}

func validateTitle(title model.IntlField, required bool) error {
	if required && len(title) == 0 {
		return errors.New(errors.CodeInvalidArg, "title is required")
	}
	for lang, variants := range title {
		if lang == "" {
			return errors.New(errors.CodeInvalidArg, "title language code must not be empty")
		}
		if len(variants) == 0 {
			return errors.New(errors.CodeInvalidArg, fmt.Sprintf("title for %q has no variants", lang))
		}
	}
	return nil
}

// Image is either raw content to upload or an already public URL
type Image struct {
	Content     []byte
	ContentType string
	URL         string
}

// CreateRequest is one generic "create media" call
type CreateRequest struct {
	Media   Input
	Image   *Image
	NoCheck bool
}

// envelope holds the fields shared by every category
type envelope struct {
	Category model.Category `json:"category"`
	NoCheck  bool           `json:"noCheck"`
	Image    string         `json:"image"`
}

// DecodeCreateRequest parses a category-discriminated JSON body.
// Fields unknown to the selected category are rejected.
func DecodeCreateRequest(data []byte) (*CreateRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidArg, "request body must be a JSON object")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidArg, "malformed request envelope")
	}
	delete(fields, "category")
	delete(fields, "noCheck")
	delete(fields, "image")

	var input Input
	switch env.Category {
	case model.CategoryChapter:
		input = &ChapterInput{}
	case model.CategoryLiteraryWork:
		input = &LiteraryWorkInput{}
	case model.CategoryMovie:
		input = &MovieInput{}
	case model.CategoryVideo:
		input = &VideoInput{}
	case model.CategoryVideoGame:
		input = &VideoGameInput{}
	case "":
		return nil, errors.New(errors.CodeInvalidArg, "category is required")
	default:
		return nil, errors.New(errors.CodeUnsupportedCategory, fmt.Sprintf("media unsupported: %q", string(env.Category)))
	}

	rest, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to re-encode request body")
	}
	dec := json.NewDecoder(bytes.NewReader(rest))
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidArg, fmt.Sprintf("invalid %s body: %v", env.Category, err))
	}

	req := &CreateRequest{Media: input, NoCheck: env.NoCheck}
	if env.Image != "" {
		req.Image = &Image{URL: env.Image}
	}
	return req, nil
}
