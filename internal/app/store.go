package app

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/couchcryptid/weather-stories/internal/store"
)

// Store is the root store type.
type Store = store.Store[State, Action]

// NewStore creates the root store with an empty state.
func NewStore(r Reducer, opts ...store.Option[State, Action]) *Store {
	return store.New[State, Action]("app", State{}, r, opts...)
}

// Readiness reports ready once a weather value has loaded.
type Readiness struct {
	loaded atomic.Bool
}

// Observe is a store observer.
func (r *Readiness) Observe(s State, _ Action) {
	if s.Weather.Weather != nil {
		r.loaded.Store(true)
	}
}

// CheckReadiness returns nil once weather has loaded at least once.
func (r *Readiness) CheckReadiness(_ context.Context) error {
	if !r.loaded.Load() {
		return errors.New("weather has not loaded yet")
	}
	return nil
}
