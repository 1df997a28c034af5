package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// UserAgent is sent with every outbound request.
const UserAgent = "apod-web/1.0"

const defaultRetries = 3

var (
	// ErrRetriesExhausted wraps the last failure once the retry budget is spent.
	ErrRetriesExhausted = errors.New("fetch: retries exhausted")
	// ErrMethodNotAllowed is returned for requests other than GET.
	ErrMethodNotAllowed = errors.New("fetch: only GET requests are supported")
	// ErrTimeout is reported when an attempt makes no progress for Options.Timeout.
	ErrTimeout = errors.New("fetch: no progress within timeout")
)

// StatusError reports a response status that was not handed back to the caller.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is one the client retries.
func (e *StatusError) Retryable() bool {
	return IsRetryableStatus(e.StatusCode)
}

// IsRetryableStatus reports whether a response with code is worth another attempt.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type Options struct {
	// HTTPClient performs the requests. Defaults to a fresh http.Client.
	HTTPClient *http.Client
	// Retries is the retry budget shared by network failures and retryable
	// statuses. Zero means the default of 3.
	Retries int
	// Backoff lists the delays before each retry. When there are more retries
	// than entries the last delay is reused.
	Backoff []time.Duration
	// Timeout bounds every wait of an attempt: connecting and receiving the
	// response headers together, then each read of the body. A body that
	// keeps arriving is never cut off. Zero disables it.
	Timeout time.Duration
}

// Client performs GET requests with bounded retries. Only https URLs are
// retried; plain http gets a single attempt.
type Client struct {
	httpClient *http.Client
	retries    int
	backoff    []time.Duration
	timeout    time.Duration
}

// DefaultBackoff doubles from half a second.
func DefaultBackoff() []time.Duration {
	return []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
}

func NewClient(options *Options) *Client {
	if options == nil {
		options = &Options{}
	}
	c := &Client{
		httpClient: options.HTTPClient,
		retries:    options.Retries,
		backoff:    options.Backoff,
		timeout:    options.Timeout,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.retries <= 0 {
		c.retries = defaultRetries
	}
	if c.backoff == nil {
		c.backoff = DefaultBackoff()
	}
	return c
}

// Get issues a GET request to rawURL. The response body is left open for the
// caller, so large media can be streamed. A body read that stalls past the
// timeout fails with ErrTimeout.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to create request: %w", err)
	}
	return c.Do(req)
}

// Do sends req, retrying network errors and retryable statuses while budget
// remains. Responses with other statuses are returned as-is.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return nil, ErrMethodNotAllowed
	}
	req.Header.Set("User-Agent", UserAgent)

	retries := c.retries
	if req.URL.Scheme != "https" {
		retries = 0
	}

	ctx := req.Context()
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.delay(attempt - 1)
			log.Debug().Str("url", redact(req.URL)).Int("attempt", attempt).Dur("delay", delay).Err(lastErr).Msg("fetch: retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.send(req.Clone(ctx))
		if err != nil {
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				urlErr.URL = redact(req.URL)
			}
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		if IsRetryableStatus(resp.StatusCode) && retries > 0 {
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode, URL: redact(req.URL)}
			continue
		}

		return resp, nil
	}

	if retries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w after %d retries: %w", ErrRetriesExhausted, retries, lastErr)
}

// send performs a single attempt, cancelling it once it stalls for c.timeout.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.timeout <= 0 {
		return c.httpClient.Do(req)
	}

	ctx, cancel := context.WithCancelCause(req.Context())
	timer := time.AfterFunc(c.timeout, func() { cancel(ErrTimeout) })
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		timer.Stop()
		cancel(nil)
		if errors.Is(context.Cause(ctx), ErrTimeout) {
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				urlErr.Err = ErrTimeout
			} else {
				err = ErrTimeout
			}
		}
		return nil, err
	}

	timer.Reset(c.timeout)
	resp.Body = &watchedBody{
		ReadCloser: resp.Body,
		ctx:        ctx,
		cancel:     cancel,
		timer:      timer,
		timeout:    c.timeout,
	}
	return resp, nil
}

// watchedBody re-arms the stall timer whenever data arrives.
type watchedBody struct {
	io.ReadCloser
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.timer.Reset(b.timeout)
	}
	if err != nil && err != io.EOF && errors.Is(context.Cause(b.ctx), ErrTimeout) {
		return n, ErrTimeout
	}
	return n, err
}

func (b *watchedBody) Close() error {
	b.timer.Stop()
	err := b.ReadCloser.Close()
	b.cancel(nil)
	return err
}

func (c *Client) delay(i int) time.Duration {
	if len(c.backoff) == 0 {
		return 0
	}
	if i >= len(c.backoff) {
		return c.backoff[len(c.backoff)-1]
	}
	return c.backoff[i]
}

// redact drops the query string so credentials never reach the logs.
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}
