package httpapi

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/service/media"
)

const (
	maxBodyBytes  = 1 << 20
	maxImageBytes = 10 << 20
)

type mediaHandler struct {
	svc MediaService
	log *zap.Logger
}

// list handles GET /media?category=&mediaId=&mediaId[]=&title=&detailed=
func (h *mediaHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := media.ListRequest{
		Category: model.Category(strings.TrimSpace(q.Get("category"))),
		Title:    strings.TrimSpace(q.Get("title")),
	}
	for _, key := range []string{"mediaId", "mediaId[]"} {
		for _, id := range q[key] {
			if id = strings.TrimSpace(id); id != "" {
				req.IDs = append(req.IDs, id)
			}
		}
	}
	if raw := q.Get("detailed"); raw != "" {
		detailed, err := strconv.ParseBool(raw)
		if err != nil {
			writeAppError(w, r, h.log, apperrors.New(apperrors.CodeInvalidArg, "detailed must be a boolean"))
			return
		}
		req.Detailed = detailed
	}

	items, err := h.svc.List(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// get handles GET /media/{category}/{id}
func (h *mediaHandler) get(w http.ResponseWriter, r *http.Request) {
	category := model.Category(strings.TrimSpace(chi.URLParam(r, "category")))
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	item, err := h.svc.Get(r.Context(), category, id)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// create handles POST /media with either a JSON body or a multipart form
// carrying a "body" JSON part and an optional "image" file part
func (h *mediaHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCreate(w, r)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	if raw := r.URL.Query().Get("noCheck"); raw != "" {
		noCheck, err := strconv.ParseBool(raw)
		if err != nil {
			writeAppError(w, r, h.log, apperrors.New(apperrors.CodeInvalidArg, "noCheck must be a boolean"))
			return
		}
		req.NoCheck = req.NoCheck || noCheck
	}

	id, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, id)
}

func (h *mediaHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (*media.CreateRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "failed to read request body")
		}
		return media.DecodeCreateRequest(body)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid multipart form")
	}

	req, err := media.DecodeCreateRequest([]byte(r.FormValue("body")))
	if err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return req, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid image part")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "failed to read image part")
	}
	req.Image = &media.Image{Content: content, ContentType: header.Header.Get("Content-Type")}
	return req, nil
}
