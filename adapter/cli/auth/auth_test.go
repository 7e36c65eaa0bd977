package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	entApp "github.com/felixgeelhaar/coachly/internal/entitlements/application"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/flags"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/purchases"
	identityApp "github.com/felixgeelhaar/coachly/internal/identity/application"
	"github.com/felixgeelhaar/coachly/internal/identity/domain"
	"github.com/felixgeelhaar/coachly/internal/identity/infrastructure/persistence"
)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sessions := identityApp.NewService(persistence.NewFileSessionRepository(filepath.Join(dir, "session.json")), nil, nil)
	store := flags.NewFileFlagStore(filepath.Join(dir, "premium.json"))
	provider := purchases.NewWebSimulatedProvider(store, "device", purchases.DefaultWebOffering())
	entitlements := entApp.NewStore(provider, nil, entApp.WithSession(sessions))
	entitlements.Initialize(ctx)

	app := cli.NewApp(entitlements, nil, nil, sessions, nil)
	cli.SetApp(app)
	t.Cleanup(func() {
		entitlements.Close()
		cli.SetApp(nil)
		cli.SetJSONOutput(false)
	})
	return app
}

func TestCommands_NoApp(t *testing.T) {
	cli.SetApp(nil)
	assert.ErrorIs(t, loginCmd.RunE(loginCmd, []string{"ada"}), cli.ErrNotInitialized)
	assert.ErrorIs(t, logoutCmd.RunE(logoutCmd, nil), cli.ErrNotInitialized)
	assert.ErrorIs(t, whoamiCmd.RunE(whoamiCmd, nil), cli.ErrNotInitialized)
}

func TestLoginWhoamiLogout(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	var output strings.Builder
	whoamiCmd.SetContext(ctx)
	whoamiCmd.SetOut(&output)
	require.NoError(t, whoamiCmd.RunE(whoamiCmd, nil))
	assert.Equal(t, "Not signed in.\n", output.String())

	output.Reset()
	loginCmd.SetContext(ctx)
	loginCmd.SetOut(&output)
	require.NoError(t, loginCmd.RunE(loginCmd, []string{"  ada  "}))
	assert.Equal(t, "Signed in as ada\n", output.String())

	output.Reset()
	require.NoError(t, whoamiCmd.RunE(whoamiCmd, nil))
	assert.Equal(t, "ada\n", output.String())

	output.Reset()
	logoutCmd.SetContext(ctx)
	logoutCmd.SetOut(&output)
	require.NoError(t, logoutCmd.RunE(logoutCmd, nil))
	assert.Equal(t, "Signed out.\n", output.String())
	assert.Empty(t, app.CurrentUserID())

	output.Reset()
	require.NoError(t, logoutCmd.RunE(logoutCmd, nil))
	assert.Equal(t, "Not signed in.\n", output.String())
}

func TestLogin_EmptyUser(t *testing.T) {
	setupApp(t)
	loginCmd.SetContext(context.Background())
	assert.ErrorIs(t, loginCmd.RunE(loginCmd, []string{"   "}), domain.ErrUserIDRequired)
}

func TestLogout_RevokesSimulatedPremium(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	loginCmd.SetContext(ctx)
	loginCmd.SetOut(&strings.Builder{})
	require.NoError(t, loginCmd.RunE(loginCmd, []string{"ada"}))
	require.NoError(t, app.Entitlements.SimulatePremium(ctx, "annual"))
	require.True(t, app.Entitlements.Status().IsPremium)

	logoutCmd.SetContext(ctx)
	logoutCmd.SetOut(&strings.Builder{})
	require.NoError(t, logoutCmd.RunE(logoutCmd, nil))
	assert.False(t, app.Entitlements.Status().IsPremium)
}

func TestWhoami_JSON(t *testing.T) {
	setupApp(t)
	cli.SetJSONOutput(true)

	var output strings.Builder
	whoamiCmd.SetContext(context.Background())
	whoamiCmd.SetOut(&output)
	require.NoError(t, whoamiCmd.RunE(whoamiCmd, nil))
	assert.Contains(t, output.String(), `"signed_in": false`)
}
