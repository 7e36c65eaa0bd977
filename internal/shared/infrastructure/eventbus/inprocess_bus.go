package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/felixgeelhaar/coachly/internal/shared/domain"
)

// Handler consumes an event delivered by the bus.
type Handler func(ctx context.Context, event domain.Event) error

type subscription struct {
	id      uint64
	pattern string
	handler Handler
}

// InProcessEventBus is an in-memory event bus used when no broker is
// configured. Events are delivered synchronously to matching subscribers.
// Patterns follow topic-exchange rules: "*" matches one word, "#" zero or more.
type InProcessEventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{logger: logger}
}

// Subscribe registers handler for routing keys matching pattern and returns
// a function that removes the subscription.
func (b *InProcessEventBus) Subscribe(pattern string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish decodes the payload and dispatches it to every matching subscriber.
// Handler failures are logged, never returned to the publisher.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Error("failed to unmarshal event payload", "routing_key", routingKey, "error", err)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if MatchRoutingKey(sub.pattern, event.RoutingKey) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		if err := sub.handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", event.RoutingKey,
				"event_id", event.ID,
				"pattern", sub.pattern,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched", "routing_key", event.RoutingKey, "handlers", len(matched))
	return nil
}

// Close drops every subscription.
func (b *InProcessEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
	return nil
}

// MatchRoutingKey reports whether key matches a topic pattern.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}
