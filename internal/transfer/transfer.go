// Package transfer turns a single outbound HTTP request into a decoded value.
//
// Success is strictly status 200. Anything else is a network failure and the
// body is discarded. There are no retries and no caching; timeouts come from
// the *http.Client the caller configures.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrorKind classifies a transfer failure.
type ErrorKind int

const (
	// RequestFailed means no response arrived (DNS, TLS, connection reset, timeout).
	RequestFailed ErrorKind = iota
	// NetworkFailure means a response arrived with a status other than 200.
	NetworkFailure
	// NoResponse means a 200 arrived with an empty body.
	NoResponse
	// DecodingFailed means the body did not match the expected shape.
	DecodingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case NoResponse:
		return "no response"
	case DecodingFailed:
		return "decoding failed"
	default:
		return "request failed"
	}
}

// Error is returned by Fetch. StatusCode is set for NetworkFailure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == NetworkFailure:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &transfer.Error{Kind: transfer.DecodingFailed}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && t.Kind == e.Kind
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues requests and decodes JSON bodies.
type Client struct {
	http   Doer
	logger *slog.Logger
}

// NewClient wraps an HTTP client. A nil doer uses http.DefaultClient.
func NewClient(doer Doer, logger *slog.Logger) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: doer, logger: logger}
}

// Fetch performs req and decodes a 200 body into T.
func Fetch[T any](ctx context.Context, c *Client, req *http.Request) (T, error) {
	var zero T

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return zero, &Error{Kind: RequestFailed, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Debug("transfer rejected",
			"url", redact(req),
			"status", resp.StatusCode,
		)
		return zero, &Error{Kind: NetworkFailure, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &Error{Kind: RequestFailed, Cause: fmt.Errorf("read body: %w", err)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, &Error{Kind: NoResponse}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, &Error{Kind: DecodingFailed, Cause: err}
	}
	return out, nil
}

// Get builds a GET request for rawURL and fetches it.
func Get[T any](ctx context.Context, c *Client, rawURL string, header http.Header) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return Fetch[T](ctx, c, req)
}

// redact drops the query string, which carries API keys.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
