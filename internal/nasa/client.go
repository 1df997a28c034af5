package nasa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/mxcd/apod-web/internal/fetch"
)

// DefaultBaseURL is the public APOD endpoint.
const DefaultBaseURL = "https://api.nasa.gov/planetary/apod"

// MetadataTimeout is the stall limit for metadata lookups: connecting plus
// waiting for headers, and each body read.
const MetadataTimeout = 20 * time.Second

// maxBodySize caps how much of an upstream answer is buffered.
const maxBodySize = 8 << 20

// ErrBodyTooLarge is returned instead of relaying a truncated answer.
var ErrBodyTooLarge = errors.New("nasa: response body exceeds 8 MiB")

// Response is an upstream answer relayed as-is.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client queries the APOD metadata endpoint.
type Client struct {
	baseURL string
	apiKey  string
	fetcher *fetch.Client
}

// NewMetadataFetcher returns a fetch client that gives up on the APOD API
// after MetadataTimeout without progress.
func NewMetadataFetcher() *fetch.Client {
	return fetch.NewClient(&fetch.Options{Timeout: MetadataTimeout})
}

func NewClient(baseURL, apiKey string, fetcher *fetch.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetcher == nil {
		fetcher = NewMetadataFetcher()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		fetcher: fetcher,
	}
}

// Picture fetches the metadata for date, or for today when date is empty.
// The date is forwarded unvalidated; the upstream decides what is acceptable.
// Any status is returned as a Response; only transport failures are errors.
func (c *Client) Picture(ctx context.Context, date string) (*Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("nasa: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("thumbs", "true")
	if date != "" {
		q.Set("date", date)
	}
	u.RawQuery = q.Encode()

	resp, err := c.fetcher.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("nasa: failed to read response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, ErrBodyTooLarge
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
