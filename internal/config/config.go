package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/weather-stories/internal/domain"
)

const (
	defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultUnsplashBaseURL    = "https://api.unsplash.com/photos/random"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	UnsplashAccessKey  string
	UnsplashBaseURL    string
	HTTPTimeout        time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Simulated device location.
	Location              domain.Coordinates
	LocationAuthorization domain.AuthorizationStatus

	SlideshowDuration time.Duration
	SlideshowInterval time.Duration

	// Snapshot publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers      []string
	KafkaWeatherTopic string
}

// PublishingEnabled reports whether weather snapshots go to Kafka.
func (c *Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parsePositiveDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	slideDuration, err := parsePositiveDuration("SLIDESHOW_DURATION", "3s")
	if err != nil {
		return nil, err
	}
	slideInterval, err := parsePositiveDuration("SLIDESHOW_INTERVAL", "50ms")
	if err != nil {
		return nil, err
	}
	if slideInterval > slideDuration {
		return nil, errors.New("SLIDESHOW_INTERVAL must not exceed SLIDESHOW_DURATION")
	}

	lat, err := parseFloat("LOCATION_LAT", "48.8566")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("LOCATION_LON", "2.3522")
	if err != nil {
		return nil, err
	}
	loc := domain.Coordinates{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		var ce *domain.CoordinateError
		if errors.As(err, &ce) {
			return nil, fmt.Errorf("invalid LOCATION_%s: %w", strings.ToUpper(ce.Field), err)
		}
		return nil, err
	}

	grant, err := domain.ParseAuthorizationStatus(sharedcfg.EnvOrDefault("LOCATION_AUTHORIZATION", "authorizedWhenInUse"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_AUTHORIZATION: %w", err)
	}
	if grant == domain.StatusNotDetermined {
		return nil, errors.New("LOCATION_AUTHORIZATION must resolve to a decision")
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", defaultOpenWeatherBaseURL),
		UnsplashAccessKey:  os.Getenv("UNSPLASH_ACCESS_KEY"),
		UnsplashBaseURL:    sharedcfg.EnvOrDefault("UNSPLASH_BASE_URL", defaultUnsplashBaseURL),
		HTTPTimeout:        httpTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Location:              loc,
		LocationAuthorization: grant,

		SlideshowDuration: slideDuration,
		SlideshowInterval: slideInterval,

		KafkaBrokers:      brokers,
		KafkaWeatherTopic: sharedcfg.EnvOrDefault("KAFKA_WEATHER_TOPIC", "weather-snapshots"),
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.UnsplashAccessKey == "" {
		return nil, errors.New("UNSPLASH_ACCESS_KEY is required")
	}
	if cfg.PublishingEnabled() && cfg.KafkaWeatherTopic == "" {
		return nil, errors.New("KAFKA_WEATHER_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
