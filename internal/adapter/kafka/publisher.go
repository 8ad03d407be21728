package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/feature/weather"
	"github.com/couchcryptid/weather-stories/internal/observability"
)

// SnapshotWriter publishes one snapshot.
type SnapshotWriter interface {
	PublishWeather(ctx context.Context, snap Snapshot) error
}

// Publisher forwards every newly loaded weather value to a SnapshotWriter
// without blocking the store that observes it.
type Publisher struct {
	writer  SnapshotWriter
	queue   chan Snapshot
	metrics *observability.Metrics
	logger  *slog.Logger

	// last is only touched by Observe, which runs on the store goroutine.
	last *domain.Weather
}

// NewPublisher buffers up to size snapshots. Older snapshots are never
// replaced; new ones are dropped while the buffer is full.
func NewPublisher(w SnapshotWriter, size int, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	if size <= 0 {
		size = 16
	}
	return &Publisher{
		writer:  w,
		queue:   make(chan Snapshot, size),
		metrics: metrics,
		logger:  logger,
	}
}

// Observe queues the weather value in s when it differs from the last one seen.
func (p *Publisher) Observe(s weather.State) {
	w := s.Weather
	if w == nil || w == p.last {
		return
	}
	p.last = w

	snap := Snapshot{
		Coordinates: s.LastKnownCoordinates,
		Location:    w.LocationName(),
		Weather:     *w,
		PublishedAt: domain.Now(),
	}
	select {
	case p.queue <- snap:
	default:
		p.logger.Warn("weather snapshot dropped, publish queue full", "location", snap.Location)
	}
}

// Run writes queued snapshots until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-p.queue:
			if err := p.writer.PublishWeather(ctx, snap); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("publish weather snapshot failed", "error", err, "location", snap.Location)
				continue
			}
			if p.metrics != nil {
				p.metrics.SnapshotsPublished.Inc()
			}
			p.logger.Debug("weather snapshot published", "location", snap.Location)
		}
	}
}
