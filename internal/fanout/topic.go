// Package fanout implements the in-process notification topic: every
// published intent is handed to every subscribed queue.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aliskhannn/medreminder/internal/model"
)

// ErrNoSubscribers is returned when an intent would be dropped.
var ErrNoSubscribers = errors.New("topic has no subscribers")

// Subscriber receives published intents.
type Subscriber interface {
	Publish(ctx context.Context, intent model.Intent) error
}

// Topic fans intents out to its subscribers.
type Topic struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
}

// NewTopic creates a topic without subscribers.
func NewTopic() *Topic {
	return &Topic{subs: make(map[string]Subscriber)}
}

// Subscribe attaches a named subscriber. Subscribing the same name again
// replaces the previous subscriber.
func (t *Topic) Subscribe(name string, s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subs[name] = s
}

// Unsubscribe detaches a subscriber.
func (t *Topic) Unsubscribe(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.subs, name)
}

// Publish hands the intent to every subscriber. It fails if any subscriber
// failed, so the caller retries; subscribers that already accepted the
// intent may then see it twice.
func (t *Topic) Publish(ctx context.Context, intent model.Intent) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.subs) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	for name, s := range t.subs {
		if err := s.Publish(ctx, intent); err != nil {
			errs = append(errs, fmt.Errorf("subscriber %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
