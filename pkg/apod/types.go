// Package apod is a Go client for an apod-web server. It looks up Astronomy
// Picture of the Day entries through the server's proxy, asks the server to
// save media, fetches saved files and follows save events.
package apod

import "time"

// MediaType is the kind of media an entry points at.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Picture is the metadata of one APOD entry as returned by the upstream API.
type Picture struct {
	Date           string    `json:"date"`
	Title          string    `json:"title"`
	Explanation    string    `json:"explanation"`
	URL            string    `json:"url"`
	HDURL          string    `json:"hdurl,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	MediaType      MediaType `json:"media_type"`
	Copyright      string    `json:"copyright,omitempty"`
	ServiceVersion string    `json:"service_version,omitempty"`
}

// MediaURL returns the best URL to save: the HD image, the plain image, or
// the thumbnail of a video. Empty if the entry has nothing savable.
func (p *Picture) MediaURL() string {
	if p.MediaType == MediaTypeVideo {
		return p.ThumbnailURL
	}
	if p.HDURL != "" {
		return p.HDURL
	}
	return p.URL
}

// DownloadRequest asks the server to save a media URL.
type DownloadRequest struct {
	// URL is the media to fetch (required).
	URL string `json:"url"`
	// Title is sanitized into the filename; the server defaults it to "apod".
	Title string `json:"title,omitempty"`
	// Date is the YYYY-MM-DD part of the filename; the server defaults it to today.
	Date string `json:"date,omitempty"`
}

// SavedMedia describes a file the server wrote.
type SavedMedia struct {
	Saved    bool   `json:"saved"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Event is pushed by the server whenever a download was saved.
type Event struct {
	// Type is currently always "saved".
	Type      string    `json:"type"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}
