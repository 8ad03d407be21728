package location

import (
	"context"
	"sync"

	"github.com/couchcryptid/weather-stories/internal/domain"
)

// Broadcaster fans authorization changes out to any number of subscribers.
// Each subscriber has its own unbounded queue, so a slow reader never blocks
// Publish or other readers.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	mu      sync.Mutex
	pending []domain.AuthorizationStatus
	wake    chan struct{}
}

// NewBroadcaster returns a Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel that receives every status published after the
// call. The channel is closed once ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context) <-chan domain.AuthorizationStatus {
	sub := &subscriber{wake: make(chan struct{}, 1)}
	out := make(chan domain.AuthorizationStatus)

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
		}()

		for {
			status, ok := sub.pop()
			if !ok {
				select {
				case <-ctx.Done():
					return
				case <-sub.wake:
					continue
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- status:
			}
		}
	}()
	return out
}

// Publish queues status for every current subscriber.
func (b *Broadcaster) Publish(status domain.AuthorizationStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		sub.push(status)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (s *subscriber) push(status domain.AuthorizationStatus) {
	s.mu.Lock()
	s.pending = append(s.pending, status)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop() (domain.AuthorizationStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return domain.StatusNotDetermined, false
	}
	status := s.pending[0]
	s.pending = s.pending[1:]
	return status, true
}
