package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/coachly/internal/shared/domain"
	"github.com/felixgeelhaar/coachly/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRoutingKey(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"premium.activated", "premium.activated", true},
		{"premium.*", "premium.revoked", true},
		{"premium.*", "premium", false},
		{"*.activated", "premium.activated", true},
		{"#", "profile.conflict_resolved", true},
		{"premium.#", "premium", true},
		{"premium.#", "premium.a.b", true},
		{"identity.*", "premium.activated", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"->"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchRoutingKey(tt.pattern, tt.key))
		})
	}
}

func TestInProcessEventBus_DeliversToMatchingSubscribers(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	var premium, all []string
	bus.Subscribe("premium.*", func(ctx context.Context, e domain.Event) error {
		premium = append(premium, e.RoutingKey)
		return nil
	})
	bus.Subscribe("#", func(ctx context.Context, e domain.Event) error {
		all = append(all, e.RoutingKey)
		return errors.New("handler failure is logged only")
	})

	for _, key := range []string{"premium.activated", "identity.signed_in"} {
		event, err := domain.NewEvent("user-1", "test", key, nil)
		require.NoError(t, err)
		require.NoError(t, PublishEvent(context.Background(), bus, event))
	}

	assert.Equal(t, []string{"premium.activated"}, premium)
	assert.Equal(t, []string{"premium.activated", "identity.signed_in"}, all)
}

func TestInProcessEventBus_Unsubscribe(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	calls := 0
	unsubscribe := bus.Subscribe("#", func(ctx context.Context, e domain.Event) error {
		calls++
		return nil
	})

	event, err := domain.NewEvent("user-1", "test", "premium.revoked", nil)
	require.NoError(t, err)

	require.NoError(t, PublishEvent(context.Background(), bus, event))
	unsubscribe()
	require.NoError(t, PublishEvent(context.Background(), bus, event))

	assert.Equal(t, 1, calls)
}

func TestPublishEvent_StampsCorrelationID(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	var got domain.Event
	bus.Subscribe("#", func(ctx context.Context, e domain.Event) error {
		got = e
		return nil
	})

	event, err := domain.NewEvent("user-1", "test", "premium.activated", nil)
	require.NoError(t, err)

	ctx := observability.WithCorrelationID(context.Background(), "corr-42")
	require.NoError(t, PublishEvent(ctx, bus, event))

	assert.Equal(t, "corr-42", got.CorrelationID)
	assert.Equal(t, event.ID, got.ID)
}

func TestInProcessEventBus_IgnoresGarbage(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), "premium.activated", []byte("not json")))
}

func TestPublishEvent_NilPublisher(t *testing.T) {
	assert.NoError(t, PublishEvent(context.Background(), nil, domain.Event{}))
}
