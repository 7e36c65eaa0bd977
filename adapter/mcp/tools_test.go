package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	entApp "github.com/felixgeelhaar/coachly/internal/entitlements/application"
	entDomain "github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/flags"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/purchases"
	featuresApp "github.com/felixgeelhaar/coachly/internal/features/application"
	featuresDomain "github.com/felixgeelhaar/coachly/internal/features/domain"
	identityApp "github.com/felixgeelhaar/coachly/internal/identity/application"
	identityPersistence "github.com/felixgeelhaar/coachly/internal/identity/infrastructure/persistence"
	profilesApp "github.com/felixgeelhaar/coachly/internal/profiles/application"
	profilesDomain "github.com/felixgeelhaar/coachly/internal/profiles/domain"
	profilesPersistence "github.com/felixgeelhaar/coachly/internal/profiles/infrastructure/persistence"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

func newTestApp(t *testing.T) *cli.App {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sessions := identityApp.NewService(identityPersistence.NewFileSessionRepository(filepath.Join(dir, "session.json")), nil, nil)
	provider := purchases.NewWebSimulatedProvider(flags.NewFileFlagStore(filepath.Join(dir, "premium.json")), "device", purchases.DefaultWebOffering())
	notices := &entApp.RecordingNotifier{}
	store := entApp.NewStore(provider, nil, entApp.WithSession(sessions), entApp.WithNotifier(notices))
	store.Initialize(ctx)
	gate := featuresApp.NewGate(store, nil)
	profiles := profilesApp.NewService(profilesPersistence.NewFileRepository(filepath.Join(dir, "profiles.json")), nil, nil)

	t.Cleanup(func() {
		gate.Close()
		store.Close()
	})
	return cli.NewApp(store, gate, profiles, sessions, notices)
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	app := &cli.App{}
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{
		"cli.health",
		"premium.status",
		"premium.purchase",
		"premium.restore",
		"premium.logout",
		"features.check",
		"features.courses",
		"profile.resolve",
		"auth.login",
	} {
		assert.True(t, names[want], "%s tool should be registered", want)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
}

func TestHandlers_NotInitialized(t *testing.T) {
	ctx := context.Background()
	app := &cli.App{}

	_, err := premiumStatusHandler(app)(ctx, statusInput{})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
	_, err = featureCheckHandler(app)(ctx, featureCheckInput{Feature: "ad_free"})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
	_, err = resolveHandler(app)(ctx, resolveInput{ConflictID: "x", Use: "github"})
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(t)

	result, err := healthHandler(app)(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusHealthy, result["status"])

	health := observability.NewHealthRegistry()
	health.Register("flags", func(ctx context.Context) observability.HealthCheckResult {
		return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: "down"}
	})
	app.SetHealth(health)

	result, err = healthHandler(app)(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusUnhealthy, result["status"])
}

func TestPremiumPurchaseHandler_WebReportsNotice(t *testing.T) {
	app := newTestApp(t)

	result, err := premiumPurchaseHandler(app)(context.Background(), purchaseInput{Package: "annual"})
	require.NoError(t, err)
	assert.Equal(t, string(entDomain.KindPlatformUnsupported), result.Kind)
	assert.False(t, result.Status.IsPremium)
	require.Len(t, result.Notices, 1)
	assert.Equal(t, entApp.NoticeError, result.Notices[0].Kind)
	assert.Equal(t, entDomain.KindPlatformUnsupported.UserMessage(), result.Notices[0].Message)

	_, err = premiumPurchaseHandler(app)(context.Background(), purchaseInput{Package: "$rc_weekly"})
	assert.Error(t, err)
	_, err = premiumPurchaseHandler(app)(context.Background(), purchaseInput{})
	assert.Error(t, err)
}

func TestPremiumPurchaseHandler_NoticesStayWithTheirCall(t *testing.T) {
	app := newTestApp(t)
	foreign := entApp.Notice{Kind: entApp.NoticeSuccess, Title: "Premium Activated", Message: "other call"}
	app.Notices.Notify(context.Background(), foreign)

	result, err := premiumPurchaseHandler(app)(context.Background(), purchaseInput{Package: "monthly"})
	require.NoError(t, err)
	require.Len(t, result.Notices, 1)
	assert.Equal(t, entApp.NoticeError, result.Notices[0].Kind)

	assert.Equal(t, []entApp.Notice{foreign}, app.Notices.Notices())
}

func TestFeatureHandlers_FollowPremium(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	check, err := featureCheckHandler(app)(ctx, featureCheckInput{Feature: "certificates"})
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, featuresDomain.AccessFull, check.Required)

	courses, err := coursesHandler(app)(ctx, coursesInput{Enrolled: []string{"a", "b", "c", "d", "e"}, Course: "f"})
	require.NoError(t, err)
	assert.Equal(t, featuresDomain.Quota(5), courses.Allowed)
	require.NotNil(t, courses.Available)
	assert.False(t, *courses.Available)

	require.NoError(t, app.Entitlements.SimulatePremium(ctx, "lifetime"))

	check, err = featureCheckHandler(app)(ctx, featureCheckInput{Feature: "certificates"})
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	courses, err = coursesHandler(app)(ctx, coursesInput{Enrolled: []string{"a", "b", "c", "d", "e"}, Course: "f"})
	require.NoError(t, err)
	assert.True(t, courses.Allowed.IsUnlimited())
	assert.True(t, *courses.Available)

	_, err = featureCheckHandler(app)(ctx, featureCheckInput{Feature: "ad_free", Level: "partial"})
	assert.ErrorIs(t, err, featuresDomain.ErrUnknownAccessLevel)
}

func TestProfileHandlers_ResolveConflict(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := addConflictHandler(app)(ctx, addConflictInput{Field: "headline", GitHubValue: "a", LinkedInValue: "b"})
	require.Error(t, err, "requires a signed-in user")

	require.NoError(t, app.Sessions.SignIn(ctx, "ada"))

	conflict, err := addConflictHandler(app)(ctx, addConflictInput{
		Field:           "headline",
		GitHubValue:     "Gopher",
		LinkedInValue:   "Senior Engineer",
		GitHubUpdatedAt: "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 2026, conflict.GitHubUpdatedAt.Year())

	_, err = resolveHandler(app)(ctx, resolveInput{ConflictID: conflict.ID})
	assert.ErrorIs(t, err, profilesDomain.ErrNoResolutionSelected)

	_, err = resolveHandler(app)(ctx, resolveInput{ConflictID: conflict.ID, Use: "manual"})
	assert.ErrorIs(t, err, profilesDomain.ErrManualValueRequired)

	result, err := resolveHandler(app)(ctx, resolveInput{ConflictID: conflict.ID, Use: "linkedin"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", result["value"])
	assert.Equal(t, 0, result["pending"])

	_, err = resolveHandler(app)(ctx, resolveInput{ConflictID: conflict.ID, Use: "github"})
	assert.ErrorIs(t, err, profilesDomain.ErrConflictAlreadyResolved)
}
