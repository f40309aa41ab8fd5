// Package client is a typed Go client for the FanLeague HTTP API.
//
// Every call returns a Result. Rejections the caller can act on (validation
// failures, conflicts, bad credentials) arrive in Result.Err; failures the
// caller can only retry (transport errors, 5xx) arrive in Result.Fatal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the error object of a 4xx response envelope.
type APIError struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Field returns the message for field, or "" when the field was accepted.
func (e *APIError) Field(field string) string {
	for _, d := range e.Details {
		if d.Field == field {
			return d.Message
		}
	}
	return ""
}

// FatalError is returned in Result.Fatal for 5xx responses.
type FatalError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *FatalError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unavailable reports whether the backing store could not be reached.
func (e *FatalError) Unavailable() bool {
	return e.Code == "STORE_UNAVAILABLE"
}

// Result is the outcome of one call. At most one of Err and Fatal is set.
type Result[T any] struct {
	Data       T
	Err        *APIError
	Fatal      error
	StatusCode int
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Fatal == nil
}

// Client calls the API at a base URL. It keeps a cookie jar so the session
// cookie set by login is sent on later calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for baseURL, e.g. "https://fanleague.example".
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope[T any] struct {
	Data  T         `json:"data"`
	Error *APIError `json:"error"`
}

// Fetch sends body (JSON-encoded, nil for none) and decodes the envelope's
// data into T.
func Fetch[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	var res Result[T]

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			res.Fatal = fmt.Errorf("encoding request body: %w", err)
			return res
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		res.Fatal = fmt.Errorf("building request: %w", err)
		return res
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		res.Fatal = fmt.Errorf("%s %s: %w", method, path, err)
		return res
	}
	defer resp.Body.Close()
	res.StatusCode = resp.StatusCode

	if resp.StatusCode == http.StatusNoContent {
		return res
	}

	var env envelope[T]
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		decodeErr = fmt.Errorf("decoding %s %s response: %w", method, path, decodeErr)
	} else {
		decodeErr = nil
	}

	switch {
	case resp.StatusCode >= 500:
		fatal := &FatalError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			fatal.Code, fatal.Message = env.Error.Code, env.Error.Message
		}
		res.Fatal = fatal
	case resp.StatusCode >= 400:
		if env.Error == nil {
			if decodeErr != nil {
				res.Fatal = decodeErr
				return res
			}
			env.Error = &APIError{Code: http.StatusText(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
		}
		env.Error.StatusCode = resp.StatusCode
		res.Err = env.Error
	case decodeErr != nil:
		res.Fatal = decodeErr
	default:
		res.Data = env.Data
	}
	return res
}

// Get fetches path.
func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	return Fetch[T](ctx, c, http.MethodGet, path, nil)
}

// Post sends body to path.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return Fetch[T](ctx, c, http.MethodPost, path, body)
}

// Put sends body to path.
func Put[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return Fetch[T](ctx, c, http.MethodPut, path, body)
}
