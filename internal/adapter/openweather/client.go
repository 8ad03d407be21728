// Package openweather fetches current conditions from the OpenWeather API.
package openweather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/transfer"
)

// DefaultBaseURL is the current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

const collaborator = "openweather"

// Client implements weather.Repository.
type Client struct {
	apiKey   string
	baseURL  string
	transfer *transfer.Client
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewClient creates an OpenWeather client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		transfer: transfer.NewClient(&http.Client{Timeout: timeout}, logger),
		metrics:  metrics,
		logger:   logger,
	}
}

// FetchWeather returns the raw current-weather payload for a coordinate.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherResponseDTO, error) {
	u, err := c.weatherURL(lat, lon)
	if err != nil {
		c.record("rejected", 0)
		return domain.WeatherResponseDTO{}, err
	}

	start := time.Now()
	dto, err := transfer.Get[domain.WeatherResponseDTO](ctx, c.transfer, u, nil)
	elapsed := time.Since(start)
	if err != nil {
		cerr := fromTransfer(err)
		c.record("error", elapsed)
		c.logger.Warn("openweather request failed",
			"lat", lat,
			"lon", lon,
			"error", cerr,
			"cause", err,
		)
		return domain.WeatherResponseDTO{}, cerr
	}

	c.record("success", elapsed)
	c.logger.Debug("openweather request ok", "lat", lat, "lon", lon, "duration", elapsed)
	return dto, nil
}

func (c *Client) weatherURL(lat, lon float64) (string, error) {
	if err := (domain.Coordinates{Lat: lat, Lon: lon}).Validate(); err != nil {
		return "", &ClientError{Kind: InvalidURL, Cause: err}
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", &ClientError{Kind: InvalidURL, Cause: fmt.Errorf("parse base url: %w", err)}
	}
	if base.Scheme == "" || base.Host == "" {
		return "", &ClientError{Kind: InvalidURL, Cause: fmt.Errorf("base url %q has no scheme or host", c.baseURL)}
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
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
