package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// FallbackName replaces titles that sanitize to nothing.
const FallbackName = "apod"

// DateLayout is the ISO-8601 calendar date used for default download dates.
const DateLayout = "2006-01-02"

const filenamePrefix = "APOD"

const defaultExtension = ".jpg"

// mediaExtensions is checked in order against the lowercased URL path.
var mediaExtensions = []string{".png", ".gif", ".jpeg", ".jpg", ".webp"}

// nameSymbols are the punctuation runes kept in names.
const nameSymbols = "_()-."

// SafeName converts an arbitrary title into a filesystem-safe token.
// Everything but letters, digits, underscores, whitespace, parentheses, dots
// and hyphens is dropped, surrounding whitespace is trimmed and every
// remaining whitespace rune becomes an underscore. Never returns "".
func SafeName(s string) string {
	cleaned := strings.TrimSpace(strings.Map(keepNameRune, s))
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return FallbackName
	}
	return cleaned
}

// keepNameRune drops every rune SafeName does not allow. Whitespace is
// judged by unicode.IsSpace so that NBSP, \v and ideographic spaces survive
// until they are turned into underscores.
func keepNameRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || strings.ContainsRune(nameSymbols, r) {
		return r
	}
	return -1
}

// MediaExtension infers the file extension from the path of rawURL.
// Unknown or unparsable URLs fall back to ".jpg".
func MediaExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultExtension
	}
	p := strings.ToLower(u.Path)
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return defaultExtension
}

// MediaFilename derives the storage filename APOD_<date>_<title><ext>.
// The date goes through SafeName as well so it can never carry a path separator.
func MediaFilename(date, title, rawURL string) string {
	return fmt.Sprintf("%s_%s_%s%s", filenamePrefix, SafeName(date), SafeName(title), MediaExtension(rawURL))
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// DownloadRequest is the JSON body of POST /api/download.
type DownloadRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// WithDefaults fills in the title and date a caller left out.
func (r DownloadRequest) WithDefaults() DownloadRequest {
	if r.Title == "" {
		r.Title = FallbackName
	}
	if r.Date == "" {
		r.Date = Today()
	}
	return r
}

// Filename is the storage filename for the request.
func (r DownloadRequest) Filename() string {
	return MediaFilename(r.Date, r.Title, r.URL)
}

// SavedMedia is returned after a media file was written to the storage directory.
type SavedMedia struct {
	Saved    bool   `json:"saved"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// DownloadEventType labels messages pushed to event subscribers.
type DownloadEventType string

const (
	DownloadEventSaved DownloadEventType = "saved"
)

// DownloadEvent is broadcast to websocket subscribers after a save.
type DownloadEvent struct {
	Type      DownloadEventType `json:"type"`
	Filename  string            `json:"filename"`
	URL       string            `json:"url"`
	Timestamp time.Time         `json:"timestamp"`
}
