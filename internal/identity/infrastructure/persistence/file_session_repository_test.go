package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/internal/identity/domain"
)

func TestFileSessionRepository_RoundTrip(t *testing.T) {
	repo := NewFileSessionRepository(filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, session.IsZero())

	s, err := domain.NewSession("user-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	session, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	session, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, session.IsZero())
}

func TestFileSessionRepository_AnonymousIDSurvivesSignOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	repo := NewFileSessionRepository(path)
	ctx := context.Background()

	id, err := repo.LoadAnonymousID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, repo.SaveAnonymousID(ctx, "$anon:device-1"))

	s, err := domain.NewSession("user-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))
	require.NoError(t, repo.Clear(ctx))

	reopened := NewFileSessionRepository(path)
	id, err = reopened.LoadAnonymousID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$anon:device-1", id)
	session, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, session.IsZero())

	require.NoError(t, reopened.ClearAnonymousID(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty session file is removed")
}
