// Package unsplash fetches random city photos from the Unsplash API.
package unsplash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/transfer"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the random photo endpoint.
const DefaultBaseURL = "https://api.unsplash.com/photos/random"

const collaborator = "unsplash"

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("unsplash circuit breaker open")

// photo is the part of the random photo payload we read.
type photo struct {
	URLs struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

// Client implements stories.PhotoSource.
type Client struct {
	accessKey string
	baseURL   string
	transfer  *transfer.Client
	circuit   *gobreaker.CircuitBreaker
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewClient creates an Unsplash client. An empty baseURL uses DefaultBaseURL.
func NewClient(accessKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accessKey: accessKey,
		baseURL:   baseURL,
		transfer:  transfer.NewClient(&http.Client{Timeout: timeout}, logger),
		circuit:   newBreaker(logger),
		metrics:   metrics,
		logger:    logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        collaborator,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// FetchRandomPhotoURLs issues one request per photo. Any failed photo fails
// the whole batch.
func (c *Client) FetchRandomPhotoURLs(ctx context.Context, city string, count int) ([]string, error) {
	u, err := c.photoURL(city)
	if err != nil {
		return nil, err
	}
	header := http.Header{"Authorization": {"Client-ID " + c.accessKey}}

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		regular, err := c.fetchOne(ctx, u, header)
		if err != nil {
			c.logger.Warn("unsplash photo fetch failed", "city", city, "photo", i+1, "count", count, "error", err)
			return nil, fmt.Errorf("photo %d of %d: %w", i+1, count, err)
		}
		urls = append(urls, regular)
	}
	c.logger.Debug("unsplash photos fetched", "city", city, "count", len(urls))
	return urls, nil
}

func (c *Client) fetchOne(ctx context.Context, u string, header http.Header) (string, error) {
	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		p, err := transfer.Get[photo](ctx, c.transfer, u, header)
		if err != nil {
			return nil, err
		}
		if _, perr := url.ParseRequestURI(p.URLs.Regular); perr != nil {
			return nil, &transfer.Error{Kind: transfer.DecodingFailed, Cause: fmt.Errorf("urls.regular: %w", perr)}
		}
		return p.URLs.Regular, nil
	})
	elapsed := time.Since(start)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.record("rejected", 0)
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		c.record("error", elapsed)
		return "", err
	}
	c.record("success", elapsed)

	regular, ok := result.(string)
	if !ok {
		return "", errors.New("unexpected result type from circuit breaker")
	}
	return regular, nil
}

func (c *Client) photoURL(city string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := url.Values{}
	q.Set("query", city)
	q.Set("orientation", "portrait")
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *Client) record(outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.CollaboratorRequests.WithLabelValues(collaborator, outcome).Inc()
	if elapsed > 0 {
		c.metrics.CollaboratorDuration.WithLabelValues(collaborator).Observe(elapsed.Seconds())
	}
}
