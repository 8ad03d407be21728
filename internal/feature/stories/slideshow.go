package stories

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/store"
	"github.com/jonboulle/clockwork"
)

// Default slideshow timing.
const (
	DefaultSlideDuration = 3 * time.Second
	DefaultTickInterval  = 50 * time.Millisecond
)

// Slideshow drives progress for the story on screen. Every tick it sends
// UpdateProgress with the elapsed fraction of the slide; once the fraction
// reaches 1 it sends Next and starts the following slide from zero.
type Slideshow struct {
	clock    clockwork.Clock
	interval time.Duration
	duration time.Duration
	send     store.Send[Action]
	metrics  *observability.Metrics

	reset atomic.Bool
}

// NewSlideshow builds a driver. Zero timings fall back to the defaults.
func NewSlideshow(clock clockwork.Clock, interval, duration time.Duration, send store.Send[Action], metrics *observability.Metrics) *Slideshow {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if duration <= 0 {
		duration = DefaultSlideDuration
	}
	return &Slideshow{
		clock:    clock,
		interval: interval,
		duration: duration,
		send:     send,
		metrics:  metrics,
	}
}

// Restart zeroes the elapsed time on the next tick, after a manual Next or Previous.
func (s *Slideshow) Restart() {
	s.reset.Store(true)
}

// Run ticks until ctx is done.
func (s *Slideshow) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}

		if s.reset.Swap(false) {
			elapsed = 0
		}
		elapsed += s.interval
		if s.metrics != nil {
			s.metrics.SlideshowTicks.Inc()
		}

		fraction := float64(elapsed) / float64(s.duration)
		if fraction >= 1 {
			elapsed = 0
			s.send(Next{})
			continue
		}
		s.send(UpdateProgress{Value: fraction})
	}
}
