package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/app"
	"github.com/felixgeelhaar/coachly/pkg/config"
)

func webConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv:          "development",
		Platform:        "web",
		UserID:          "ada",
		FlagStore:       "file",
		FlagScope:       "device",
		FlagFilePath:    filepath.Join(dir, "premium.json"),
		SessionFilePath: filepath.Join(dir, "session.json"),
		ProfileFilePath: filepath.Join(dir, "profiles.json"),
		EventsBackend:   "inprocess",
		MCPAddr:         "127.0.0.1:0",
	}
}

func TestNewCLIApp(t *testing.T) {
	container, err := app.NewContainer(context.Background(), webConfig(t), nil)
	require.NoError(t, err)
	defer container.Close()

	cliApp := NewCLIApp(container)
	assert.Same(t, container.Entitlements, cliApp.Entitlements)
	assert.Same(t, container.Features, cliApp.Features)
	assert.Same(t, container.Profiles, cliApp.Profiles)
	assert.Same(t, container.Health, cliApp.Health)
	assert.Equal(t, "ada", cliApp.CurrentUserID())
}

func TestServe_RequiresDependencies(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, Serve(ctx, nil, &cli.App{}, nil))
	assert.Error(t, Serve(ctx, webConfig(t), nil, nil))
}

func TestServeMetrics_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := serveMetrics(ctx, "127.0.0.1:0", http.NotFoundHandler(), slog.Default())
	assert.NoError(t, err)
}
