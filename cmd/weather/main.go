package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-stories/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-stories/internal/adapter/kafka"
	locationadapter "github.com/couchcryptid/weather-stories/internal/adapter/location"
	"github.com/couchcryptid/weather-stories/internal/adapter/openweather"
	"github.com/couchcryptid/weather-stories/internal/adapter/settings"
	"github.com/couchcryptid/weather-stories/internal/adapter/unsplash"
	"github.com/couchcryptid/weather-stories/internal/app"
	"github.com/couchcryptid/weather-stories/internal/config"
	"github.com/couchcryptid/weather-stories/internal/feature/location"
	"github.com/couchcryptid/weather-stories/internal/feature/stories"
	"github.com/couchcryptid/weather-stories/internal/feature/weather"
	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/store"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	device := locationadapter.NewSimulated(cfg.Location, cfg.LocationAuthorization, logger,
		locationadapter.WithMetrics(metrics))
	weatherClient := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.HTTPTimeout, metrics, logger)
	photoClient := unsplash.NewClient(cfg.UnsplashAccessKey, cfg.UnsplashBaseURL, cfg.HTTPTimeout, metrics, logger)
	opener := settings.NewLogOpener(logger)

	readiness := &app.Readiness{}
	observers := []func(app.State, app.Action){readiness.Observe}

	var (
		writer    *kafkaadapter.Writer
		publisher *kafkaadapter.Publisher
	)
	if cfg.PublishingEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaadapter.NewPublisher(writer, 0, metrics, logger)
		observers = append(observers, func(s app.State, _ app.Action) { publisher.Observe(s.Weather) })
		logger.Info("weather snapshot publishing enabled", "topic", cfg.KafkaWeatherTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("weather snapshot publishing disabled")
	}

	root := app.NewStore(
		app.NewReducer(location.NewReducer(device), weather.NewReducer(weatherClient, opener)),
		store.WithLogger[app.State, app.Action](logger),
		store.WithMetrics[app.State, app.Action](metrics),
		store.WithObserver[app.State, app.Action](func(s app.State, a app.Action) {
			for _, o := range observers {
				o(s, a)
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := stories.NewSessions(ctx, stories.NewReducer(photoClient, nil), stories.SessionConfig{
		Clock:    clockwork.NewRealClock(),
		Interval: cfg.SlideshowInterval,
		Duration: cfg.SlideshowDuration,
		Metrics:  metrics,
		Logger:   logger,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:   readiness,
		App:     root,
		Stories: sessions,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup

	// Start the root store and ask for location access straight away.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := root.Run(ctx); err != nil {
			logger.Error("app store error", "error", err)
		}
	}()
	root.Send(app.LocationAction{Action: location.RequestAuthorization{}})

	if publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := publisher.Run(ctx); err != nil {
				logger.Error("snapshot publisher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	sessions.Close()
	wg.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
