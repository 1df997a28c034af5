package apod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client talks to an apod-web server. Create one with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delays     []time.Duration
}

// NewClient creates a Client for the server at baseURL, e.g. "http://localhost:5000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// downloads on the server side may take up to a minute
			Timeout: 90 * time.Second,
		},
		delays: []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// doRequest performs an HTTP request. GET requests are retried with
// exponential backoff on network errors and 503/504 responses; other
// methods get a single attempt. Non-2xx responses become *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	target := c.baseURL + path
	attempts := 1
	if method == http.MethodGet {
		attempts += len(c.delays)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		// Create a fresh request (body may have been read)
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("apod: failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && ctx.Err() == nil {
				lastErr = err
				continue
			}
			return nil, err
		}

		if (resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusGatewayTimeout) && attempt < attempts-1 {
			resp.Body.Close()
			lastErr = fmt.Errorf("apod: server error %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, newAPIError(resp.StatusCode, bodyBytes)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("apod: request failed after retries: %w", lastErr)
}

// Picture fetches the entry for date (YYYY-MM-DD), or today's when date is empty.
func (c *Client) Picture(ctx context.Context, date string) (*Picture, error) {
	path := "/api/apod"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p Picture
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("apod: failed to decode picture: %w", err)
	}
	return &p, nil
}

// Download asks the server to fetch req.URL and save it.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (*SavedMedia, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("apod: url is required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("apod: failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/download", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var saved SavedMedia
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return nil, fmt.Errorf("apod: failed to decode download response: %w", err)
	}
	return &saved, nil
}

// SavePicture looks up the entry for date and saves its media on the server.
func (c *Client) SavePicture(ctx context.Context, date string) (*Picture, *SavedMedia, error) {
	p, err := c.Picture(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	mediaURL := p.MediaURL()
	if mediaURL == "" {
		return p, nil, fmt.Errorf("apod: entry %s has no savable media", p.Date)
	}
	saved, err := c.Download(ctx, DownloadRequest{URL: mediaURL, Title: p.Title, Date: p.Date})
	if err != nil {
		return p, nil, err
	}
	return p, saved, nil
}

// File streams a saved file into w and returns its content type.
func (c *Client) File(ctx context.Context, filename string, w io.Writer) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/downloads/"+url.PathEscape(filename), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("apod: failed to read file data: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

// Events subscribes to save events and calls fn for each until ctx is done
// or the connection drops. A cancelled context returns nil.
func (c *Client) Events(ctx context.Context, fn func(Event)) error {
	wsURL := c.baseURL + "/api/events"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("apod: failed to connect to events: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("apod: event stream closed: %w", err)
		}
		fn(event)
	}
}
