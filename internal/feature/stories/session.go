package stories

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-stories/internal/observability"
	"github.com/couchcryptid/weather-stories/internal/store"
	"github.com/jonboulle/clockwork"
)

// SessionConfig holds what every slideshow session shares.
type SessionConfig struct {
	Clock    clockwork.Clock
	Interval time.Duration
	Duration time.Duration
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Session is one open slideshow: a stories store plus the timer driving it.
type Session struct {
	store     *store.Store[State, Action]
	slideshow *Slideshow
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// StartSession opens a slideshow for city and starts fetching its photos.
// The session runs until Close is called or ctx is done.
func StartSession(ctx context.Context, city string, r Reducer, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sess := &Session{}
	sess.store = store.New[State, Action]("stories", NewState(city), r,
		store.WithLogger[State, Action](logger.With("city", city)),
		store.WithMetrics[State, Action](cfg.Metrics),
		store.WithObserver[State, Action](func(_ State, a Action) {
			switch a.(type) {
			case Previous, FetchResponse:
				sess.slideshow.Restart()
			}
		}),
	)
	sess.slideshow = NewSlideshow(cfg.Clock, cfg.Interval, cfg.Duration, sess.store.Send, cfg.Metrics)

	ctx, sess.cancel = context.WithCancel(ctx)
	sess.store.Send(Fetch{})

	sess.wg.Add(2)
	go func() {
		defer sess.wg.Done()
		if err := sess.store.Run(ctx); err != nil {
			logger.Error("stories store stopped", "error", err)
		}
	}()
	go func() {
		defer sess.wg.Done()
		_ = sess.slideshow.Run(ctx)
	}()
	return sess
}

// State returns the current slideshow state.
func (s *Session) State() State {
	return s.store.State()
}

// Send dispatches a user action. A manual Next restarts the slide timer.
func (s *Session) Send(a Action) {
	if _, ok := a.(Next); ok {
		s.slideshow.Restart()
	}
	s.store.Send(a)
}

// Close stops the timer and the store and waits for both.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// Sessions keeps at most one open slideshow.
type Sessions struct {
	ctx     context.Context
	reducer Reducer
	cfg     SessionConfig

	mu      sync.Mutex
	current *Session
}

// NewSessions creates a manager whose sessions live no longer than ctx.
func NewSessions(ctx context.Context, r Reducer, cfg SessionConfig) *Sessions {
	return &Sessions{ctx: ctx, reducer: r, cfg: cfg}
}

// Open closes any open session and starts one for city.
func (m *Sessions) Open(city string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
	}
	m.current = StartSession(m.ctx, city, m.reducer, m.cfg)
	return m.current
}

// Current returns the open session, or nil.
func (m *Sessions) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close ends the open session. It reports whether one was open.
func (m *Sessions) Close() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}
	m.current.Close()
	m.current = nil
	return true
}
