// Package store runs reducers.
//
// A Store owns one state value and applies actions to it one at a time, in
// the order they were sent, on a single goroutine. Reducers are pure: they
// return the next state plus a list of effects. Effects run on their own
// goroutines and report back by sending more actions, which join the end of
// the queue when the effect resolves rather than when it starts.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-stories/internal/observability"
)

// Send enqueues an action. It never blocks.
type Send[A any] func(A)

// Effect is an asynchronous operation whose results re-enter as actions.
// It must return once ctx is done.
type Effect[A any] func(ctx context.Context, send Send[A])

// Reducer is a pure state transition.
type Reducer[S, A any] interface {
	Reduce(state S, action A) (S, []Effect[A])
}

// ReducerFunc adapts a function to Reducer.
type ReducerFunc[S, A any] func(S, A) (S, []Effect[A])

// Reduce calls f.
func (f ReducerFunc[S, A]) Reduce(s S, a A) (S, []Effect[A]) { return f(s, a) }

// Observer sees every state after the action that produced it. Observers run
// on the action goroutine and must not block.
type Observer[S, A any] func(state S, action A)

// Store sequences actions through a reducer.
type Store[S, A any] struct {
	name      string
	reducer   Reducer[S, A]
	logger    *slog.Logger
	metrics   *observability.Metrics
	observers []Observer[S, A]

	mu     sync.Mutex
	state  S
	queue  []A
	wake   chan struct{}
	closed bool

	running atomic.Bool
	effects sync.WaitGroup
}

// Option configures a Store.
type Option[S, A any] func(*Store[S, A])

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[S, A any](l *slog.Logger) Option[S, A] {
	return func(s *Store[S, A]) { s.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics[S, A any](m *observability.Metrics) Option[S, A] {
	return func(s *Store[S, A]) { s.metrics = m }
}

// WithObserver registers an observer.
func WithObserver[S, A any](o Observer[S, A]) Option[S, A] {
	return func(s *Store[S, A]) { s.observers = append(s.observers, o) }
}

// New creates a Store holding initial. Actions sent before Run are queued.
func New[S, A any](name string, initial S, r Reducer[S, A], opts ...Option[S, A]) *Store[S, A] {
	s := &Store[S, A]{
		name:    name,
		reducer: r,
		state:   initial,
		wake:    make(chan struct{}, 1),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("store", name)
	return s
}

// State returns a copy of the current state.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether Run is active.
func (s *Store[S, A]) Running() bool {
	return s.running.Load()
}

// Send enqueues an action. Sends after Run has returned are dropped.
func (s *Store[S, A]) Send(action A) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("action dropped after shutdown", "action", ActionName(action))
		return
	}
	s.queue = append(s.queue, action)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run processes actions until ctx is cancelled, then waits for in-flight
// effects to return.
func (s *Store[S, A]) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("store %s: already running", s.name)
	}
	defer s.running.Store(false)

	s.logger.Info("store started")
	if s.metrics != nil {
		s.metrics.StoreRunning.WithLabelValues(s.name).Set(1)
		defer s.metrics.StoreRunning.WithLabelValues(s.name).Set(0)
	}

	for {
		for {
			action, ok := s.next()
			if !ok {
				break
			}
			s.apply(ctx, action)
		}

		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.closed = true
			pending := len(s.queue)
			s.queue = nil
			s.mu.Unlock()

			s.logger.Info("store stopping", "reason", ctx.Err(), "dropped_actions", pending)
			s.effects.Wait()
			return nil
		case <-s.wake:
		}
	}
}

func (s *Store[S, A]) next() (A, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero A
	if len(s.queue) == 0 {
		return zero, false
	}
	a := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return a, true
}

func (s *Store[S, A]) apply(ctx context.Context, action A) {
	name := ActionName(action)

	s.mu.Lock()
	next, effects := s.reducer.Reduce(s.state, action)
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("action reduced", "action", name, "effects", len(effects))
	if s.metrics != nil {
		s.metrics.ActionsProcessed.WithLabelValues(s.name, name).Inc()
	}

	for _, o := range s.observers {
		o(next, action)
	}

	for _, eff := range effects {
		if eff == nil {
			continue
		}
		s.launch(ctx, name, eff)
	}
}

func (s *Store[S, A]) launch(ctx context.Context, origin string, eff Effect[A]) {
	if s.metrics != nil {
		s.metrics.EffectsStarted.WithLabelValues(s.name).Inc()
	}
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn("effect panicked", "origin", origin, "panic", r)
			}
			if s.metrics != nil {
				s.metrics.EffectDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
			}
		}()
		eff(ctx, s.Send)
	}()
}

// ActionName names an action for logs and metrics. Actions can override the
// default type-based name by implementing ActionName() string.
func ActionName(action any) string {
	if n, ok := action.(interface{ ActionName() string }); ok {
		return n.ActionName()
	}
	name := fmt.Sprintf("%T", action)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
