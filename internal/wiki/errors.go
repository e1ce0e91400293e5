package wiki

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrInvalidAPIURL is returned when the API endpoint is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: expected absolute http or https URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidLanguage is returned when a language code is not a valid BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrUnexpectedResponse is returned when a response document does not have
	// the expected shape.
	ErrUnexpectedResponse = errors.New("unexpected API response")
)

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the HTTP status line text.
	Status string

	// RetryAfter is the server-requested delay, zero when absent.
	RetryAfter time.Duration
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("unexpected status %s (retry after %s)", e.Status, e.RetryAfter)
	}
	return "unexpected status " + e.Status
}

// IsStatusError reports whether err is or wraps a *StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// newStatusError builds a StatusError from a response.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			se.RetryAfter = d
		}
	}
	return se
}

// APIError is the MediaWiki error object returned with a 200 status.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}
