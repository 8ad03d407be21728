// Package location provides a location collaborator for headless hosts: a
// fixed position and a permission prompt that resolves to a configured status.
package location

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/observability"
)

const collaborator = "location"

// Simulated implements the location machine's Provider.
type Simulated struct {
	coords   domain.Coordinates
	accuracy float64
	grant    domain.AuthorizationStatus
	delay    time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	status domain.AuthorizationStatus
	fixErr error

	broadcaster *Broadcaster
}

// Option configures a Simulated provider.
type Option func(*Simulated)

// WithFixDelay makes CurrentLocation wait before answering.
func WithFixDelay(d time.Duration) Option {
	return func(s *Simulated) { s.delay = d }
}

// WithAccuracy sets the reported horizontal accuracy in meters.
func WithAccuracy(m float64) Option {
	return func(s *Simulated) { s.accuracy = m }
}

// WithMetrics records fix requests.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Simulated) { s.metrics = m }
}

// NewSimulated reports coords and resolves the prompt to grant.
func NewSimulated(coords domain.Coordinates, grant domain.AuthorizationStatus, logger *slog.Logger, opts ...Option) *Simulated {
	s := &Simulated{
		coords:      coords,
		accuracy:    5,
		grant:       grant,
		logger:      logger,
		status:      domain.StatusNotDetermined,
		broadcaster: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestAuthorization resolves a pending prompt to the configured status.
// Once decided, the status only changes through SetStatus.
func (s *Simulated) RequestAuthorization() {
	s.mu.Lock()
	if s.status != domain.StatusNotDetermined {
		s.mu.Unlock()
		return
	}
	s.status = s.grant
	s.mu.Unlock()

	s.logger.Info("location authorization decided", "status", s.grant.String())
	s.broadcaster.Publish(s.grant)
}

// SetStatus changes the permission as a user would from system settings.
func (s *Simulated) SetStatus(status domain.AuthorizationStatus) {
	s.mu.Lock()
	changed := s.status != status
	s.status = status
	s.mu.Unlock()

	if changed {
		s.logger.Info("location authorization changed", "status", status.String())
		s.broadcaster.Publish(status)
	}
}

// FailFixes makes every later CurrentLocation call return err. Pass nil to recover.
func (s *Simulated) FailFixes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixErr = err
}

// AuthorizationStatus returns the current grant.
func (s *Simulated) AuthorizationStatus() domain.AuthorizationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// AuthorizationUpdates subscribes to status changes until ctx is done.
func (s *Simulated) AuthorizationUpdates(ctx context.Context) <-chan domain.AuthorizationStatus {
	return s.broadcaster.Subscribe(ctx)
}

// CurrentLocation returns the configured position stamped with the current time.
func (s *Simulated) CurrentLocation(ctx context.Context) (domain.LocationSnapshot, error) {
	start := time.Now()
	snap, err := s.currentLocation(ctx)

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.CollaboratorRequests.WithLabelValues(collaborator, outcome).Inc()
		s.metrics.CollaboratorDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
	}
	return snap, err
}

func (s *Simulated) currentLocation(ctx context.Context) (domain.LocationSnapshot, error) {
	s.mu.Lock()
	status, fixErr := s.status, s.fixErr
	s.mu.Unlock()

	if !status.Authorized() {
		return domain.LocationSnapshot{}, &domain.LocationError{Kind: domain.LocationAuthorizationDenied}
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.LocationSnapshot{}, &domain.LocationError{Kind: domain.LocationFetchFailed, Cause: ctx.Err()}
		case <-timer.C:
		}
	}

	if fixErr != nil {
		return domain.LocationSnapshot{}, &domain.LocationError{Kind: domain.LocationFetchFailed, Cause: fixErr}
	}

	return domain.LocationSnapshot{
		Coordinates:        s.coords,
		HorizontalAccuracy: s.accuracy,
		Timestamp:          domain.Now(),
	}, nil
}
