package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Taichi-iskw/enki/internal/errors"
)

const shortURLPrefix = "https://youtu.be/"

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// pathPrefixes are the youtube.com paths that carry the video ID as the next segment
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// VideoID extracts the video ID from any supported YouTube link
func VideoID(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return "", errors.New(errors.CodeInvalidArg, "invalid video link")
	}

	var id string
	switch strings.ToLower(u.Hostname()) {
	case "youtu.be", "www.youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range pathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	default:
		return "", errors.New(errors.CodeInvalidArg, "not a YouTube link: "+u.Hostname())
	}

	if !videoIDPattern.MatchString(id) {
		return "", errors.New(errors.CodeInvalidArg, "invalid video link")
	}
	return id, nil
}

// ShortURL canonicalizes a YouTube link to https://youtu.be/<id>
func ShortURL(link string) (string, error) {
	id, err := VideoID(link)
	if err != nil {
		return "", err
	}
	return shortURLPrefix + id, nil
}

// VideoIDFromShortURL returns the ID part of a canonical short URL
func VideoIDFromShortURL(shortURL string) string {
	return strings.TrimPrefix(shortURL, shortURLPrefix)
}
