package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
	"github.com/felixgeelhaar/coachly/internal/profiles/infrastructure/persistence"
	shareddomain "github.com/felixgeelhaar/coachly/internal/shared/domain"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
)

func TestService_ResolveThroughWorkflow(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewFileRepository(filepath.Join(t.TempDir(), "profiles.json"))

	bus := eventbus.NewInProcessEventBus(nil)
	var events []domain.ConflictResolved
	bus.Subscribe(domain.RoutingKeyConflictResolved, func(ctx context.Context, e shareddomain.Event) error {
		var payload domain.ConflictResolved
		require.NoError(t, e.Decode(&payload))
		events = append(events, payload)
		return nil
	})

	svc := NewService(repo, bus, nil)
	conflict := domain.NewConflict("company", "Acme", "Globex", time.Now(), time.Now())
	require.NoError(t, svc.RecordConflict(ctx, "user-1", conflict))

	pending, err := svc.PendingConflicts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	w, err := svc.Workflow(ctx, "user-1", conflict.ID)
	require.NoError(t, err)
	require.NoError(t, w.Select(domain.ResolveLinkedIn))
	require.NoError(t, w.Confirm(ctx))

	profile, err := svc.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Globex", profile.Fields["company"].Value)
	assert.Empty(t, profile.Pending())

	require.Len(t, events, 1)
	assert.Equal(t, "company", events[0].Field)
	assert.Equal(t, domain.ResolveLinkedIn, events[0].Kind)

	_, err = svc.Workflow(ctx, "user-1", conflict.ID)
	assert.ErrorIs(t, err, domain.ErrConflictAlreadyResolved)
}

func TestService_UnknownConflict(t *testing.T) {
	repo := persistence.NewFileRepository(filepath.Join(t.TempDir(), "profiles.json"))
	svc := NewService(repo, nil, nil)

	_, err := svc.Workflow(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, domain.ErrConflictNotFound)

	_, err = svc.Resolve(context.Background(), "user-1", domain.Resolution{ConflictID: "missing", Kind: domain.ResolveGitHub})
	assert.ErrorIs(t, err, domain.ErrConflictNotFound)
}
