package download

import (
	"errors"
	"fmt"

	"github.com/mxcd/apod-web/internal/fetch"
)

// Kind classifies why a download failed.
type Kind string

const (
	// KindNetwork covers transport failures, including reading the body.
	KindNetwork Kind = "network"
	// KindBadStatus means the media host answered with a 4xx or 5xx status.
	KindBadStatus Kind = "bad_status"
	// KindWrite means the file could not be written.
	KindWrite Kind = "write"
)

// Error is returned by Downloader.Save for every failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("download: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same download may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindBadStatus:
		return fetch.IsRetryableStatus(e.StatusCode)
	}
	return false
}

// KindOf returns the Kind of err, or "" if err is not a download error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// fetchError classifies an error returned by the fetch client.
func fetchError(err error) *Error {
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return &Error{Kind: KindBadStatus, StatusCode: statusErr.StatusCode, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
