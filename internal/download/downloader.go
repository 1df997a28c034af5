package download

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mxcd/apod-web/internal/fetch"
	"github.com/mxcd/apod-web/internal/model"
	"github.com/mxcd/apod-web/internal/store"
	"github.com/rs/zerolog/log"
)

// Timeout is the stall limit for media fetches: connecting plus waiting for
// headers, and each body read. A download that keeps receiving data may take
// as long as it needs.
const Timeout = 60 * time.Second

// ErrMissingURL is returned when a request carries no media URL.
var ErrMissingURL = errors.New("download: url is required")

// Downloader fetches media URLs into a Store. Timeouts are the fetcher's;
// NewMediaFetcher builds one with Timeout applied.
type Downloader struct {
	fetcher *fetch.Client
	store   *store.Store
}

// NewMediaFetcher returns a fetch client that gives up on media hosts after
// Timeout without progress.
func NewMediaFetcher() *fetch.Client {
	return fetch.NewClient(&fetch.Options{Timeout: Timeout})
}

func NewDownloader(fetcher *fetch.Client, s *store.Store) *Downloader {
	if fetcher == nil {
		fetcher = NewMediaFetcher()
	}
	return &Downloader{
		fetcher: fetcher,
		store:   s,
	}
}

// Save downloads req.URL into the store under the name derived from req,
// applying the default title and date first. Failures other than a missing
// URL are returned as *Error.
func (d *Downloader) Save(ctx context.Context, req model.DownloadRequest) (*model.SavedMedia, error) {
	if req.URL == "" {
		return nil, ErrMissingURL
	}
	req = req.WithDefaults()
	filename := req.Filename()

	resp, err := d.fetcher.Get(ctx, req.URL)
	if err != nil {
		return nil, fetchError(err)
	}
	defer resp.Body.Close()

	// redirects are followed by the fetcher; anything below 400 left over is saved
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{
			Kind:       KindBadStatus,
			StatusCode: resp.StatusCode,
			Err:        &fetch.StatusError{StatusCode: resp.StatusCode, URL: req.URL},
		}
	}

	path, written, err := d.store.Save(filename, resp.Body)
	if err != nil {
		var readErr *store.ReadError
		if errors.As(err, &readErr) {
			return nil, &Error{Kind: KindNetwork, Err: err}
		}
		return nil, &Error{Kind: KindWrite, Err: err}
	}

	log.Info().Str("filename", filename).Int64("bytes", written).Msg("download: media saved")
	return &model.SavedMedia{
		Saved:    true,
		Filename: filename,
		Path:     path,
	}, nil
}
