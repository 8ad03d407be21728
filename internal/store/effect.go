package store

import (
	"context"
	"sync"
)

// Just returns an effect that sends action immediately.
func Just[A any](action A) Effect[A] {
	return func(_ context.Context, send Send[A]) { send(action) }
}

// FireAndForget runs fn and reports nothing back.
func FireAndForget[A any](fn func(ctx context.Context)) Effect[A] {
	return func(ctx context.Context, _ Send[A]) { fn(ctx) }
}

// Map lifts child effects into a parent action space.
func Map[A, B any](effects []Effect[A], wrap func(A) B) []Effect[B] {
	if len(effects) == 0 {
		return nil
	}
	out := make([]Effect[B], 0, len(effects))
	for _, eff := range effects {
		if eff == nil {
			continue
		}
		out = append(out, func(ctx context.Context, send Send[B]) {
			eff(ctx, func(a A) { send(wrap(a)) })
		})
	}
	return out
}

// Collect runs effects one after another and returns every action they sent,
// in order. Each effect must return on its own or when ctx is done.
func Collect[A any](ctx context.Context, effects []Effect[A]) []A {
	var (
		mu  sync.Mutex
		out []A
	)
	send := func(a A) {
		mu.Lock()
		out = append(out, a)
		mu.Unlock()
	}
	for _, eff := range effects {
		if eff != nil {
			eff(ctx, send)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	return out
}
