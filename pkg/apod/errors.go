package apod

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common API error conditions.
var (
	// ErrBadRequest is returned when the server responds with 400 Bad Request.
	ErrBadRequest = errors.New("apod: bad request")
	// ErrNotFound is returned when the server responds with 404 Not Found.
	ErrNotFound = errors.New("apod: not found")
	// ErrUpstream is returned when the server could not reach the APOD API (502).
	ErrUpstream = errors.New("apod: upstream unavailable")
	// ErrServer is returned for other 5xx responses.
	ErrServer = errors.New("apod: server error")
)

// APIError represents an error returned by the server. It supports
// errors.Is against the sentinels above via Unwrap.
type APIError struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Message is the error message, or the raw body when it was not JSON.
	Message string
	// Detail carries the underlying failure for upstream errors.
	Detail string
	// Kind classifies download failures: "network", "bad_status" or "write".
	Kind string
	// Retryable is set by the server for download failures worth repeating.
	Retryable bool
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("apod: API error %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("apod: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code to a sentinel error.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return ErrBadRequest
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadGateway:
		return ErrUpstream
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return nil
	}
}

// serverErrorResponse is the {"error": "..."} body the server writes. Msg
// is what the APOD API itself uses in bodies the server relays verbatim.
type serverErrorResponse struct {
	Error     string `json:"error"`
	Msg       string `json:"msg"`
	Detail    string `json:"detail"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// newAPIError builds an *APIError from a non-2xx response body.
func newAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Message: string(body)}

	var resp serverErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		switch {
		case resp.Error != "":
			apiErr.Message = resp.Error
		case resp.Msg != "":
			apiErr.Message = resp.Msg
		}
		apiErr.Detail = resp.Detail
		apiErr.Kind = resp.Kind
		apiErr.Retryable = resp.Retryable
	}
	return apiErr
}
