package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	type payload struct {
		Plan string `json:"plan"`
	}

	event, err := NewEvent("user-1", "entitlement", "premium.activated", payload{Plan: "annual"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "user-1", event.AggregateID)
	assert.Equal(t, "premium.activated", event.RoutingKey)
	assert.False(t, event.OccurredAt.IsZero())

	var decoded payload
	require.NoError(t, event.Decode(&decoded))
	assert.Equal(t, "annual", decoded.Plan)
}

func TestEvent_DecodeWithoutPayload(t *testing.T) {
	event, err := NewEvent("user-1", "entitlement", "premium.revoked", nil)
	require.NoError(t, err)

	var v map[string]any
	assert.Error(t, event.Decode(&v))
}
