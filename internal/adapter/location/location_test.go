package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = domain.Coordinates{Lat: 48.8566, Lon: 2.3522}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, ch <-chan domain.AuthorizationStatus) domain.AuthorizationStatus {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("no status received")
		return domain.StatusNotDetermined
	}
}

func TestSimulated_PromptResolvesToGrant(t *testing.T) {
	p := NewSimulated(paris, domain.StatusAuthorizedWhenInUse, discard())
	assert.Equal(t, domain.StatusNotDetermined, p.AuthorizationStatus())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := p.AuthorizationUpdates(ctx)

	p.RequestAuthorization()
	assert.Equal(t, domain.StatusAuthorizedWhenInUse, p.AuthorizationStatus())
	assert.Equal(t, domain.StatusAuthorizedWhenInUse, receive(t, updates))

	p.RequestAuthorization()
	select {
	case s := <-updates:
		t.Fatalf("decided prompt must not publish again, got %v", s)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSimulated_FanOutToEverySubscriber(t *testing.T) {
	p := NewSimulated(paris, domain.StatusDenied, discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := p.AuthorizationUpdates(ctx)
	b := p.AuthorizationUpdates(ctx)

	p.RequestAuthorization()
	p.SetStatus(domain.StatusAuthorizedAlways)

	for _, ch := range []<-chan domain.AuthorizationStatus{a, b} {
		assert.Equal(t, domain.StatusDenied, receive(t, ch))
		assert.Equal(t, domain.StatusAuthorizedAlways, receive(t, ch))
	}
}

func TestSimulated_SetStatusSameValueIsSilent(t *testing.T) {
	p := NewSimulated(paris, domain.StatusDenied, discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := p.AuthorizationUpdates(ctx)

	p.SetStatus(domain.StatusNotDetermined)
	p.SetStatus(domain.StatusRestricted)
	assert.Equal(t, domain.StatusRestricted, receive(t, updates))
}

func TestSimulated_CurrentLocation(t *testing.T) {
	fixed := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	p := NewSimulated(paris, domain.StatusAuthorizedAlways, discard(), WithAccuracy(12), WithMetrics(metrics))

	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, &domain.LocationError{Kind: domain.LocationAuthorizationDenied})

	p.RequestAuthorization()
	snap, err := p.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LocationSnapshot{Coordinates: paris, HorizontalAccuracy: 12, Timestamp: fixed}, snap)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CollaboratorRequests.WithLabelValues(collaborator, "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CollaboratorRequests.WithLabelValues(collaborator, "error")), 0)
}

func TestSimulated_FailFixes(t *testing.T) {
	p := NewSimulated(paris, domain.StatusAuthorizedAlways, discard())
	p.RequestAuthorization()
	p.FailFixes(errors.New("no satellites"))

	_, err := p.CurrentLocation(context.Background())
	assert.ErrorIs(t, err, &domain.LocationError{Kind: domain.LocationFetchFailed})
	assert.Contains(t, err.Error(), "no satellites")

	p.FailFixes(nil)
	_, err = p.CurrentLocation(context.Background())
	assert.NoError(t, err)
}

func TestSimulated_FixDelayHonorsContext(t *testing.T) {
	p := NewSimulated(paris, domain.StatusAuthorizedAlways, discard(), WithFixDelay(time.Hour))
	p.RequestAuthorization()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.CurrentLocation(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBroadcaster_UnsubscribesOnCancel(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	assert.Equal(t, 1, b.Subscribers())

	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroadcaster_SlowReaderKeepsOrder(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)

	statuses := []domain.AuthorizationStatus{
		domain.StatusDenied,
		domain.StatusAuthorizedWhenInUse,
		domain.StatusRestricted,
		domain.StatusAuthorizedAlways,
	}
	for _, s := range statuses {
		b.Publish(s)
	}
	for _, want := range statuses {
		assert.Equal(t, want, receive(t, ch))
	}
}
