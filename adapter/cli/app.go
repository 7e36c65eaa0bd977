package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	entApp "github.com/felixgeelhaar/coachly/internal/entitlements/application"
	featuresApp "github.com/felixgeelhaar/coachly/internal/features/application"
	identityApp "github.com/felixgeelhaar/coachly/internal/identity/application"
	profilesApp "github.com/felixgeelhaar/coachly/internal/profiles/application"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("coachly is not initialized; check your configuration")

// App holds the CLI application dependencies.
type App struct {
	Entitlements *entApp.Store
	Features     *featuresApp.Gate
	Profiles     *profilesApp.Service
	Sessions     *identityApp.Service
	Notices      *entApp.RecordingNotifier
	Health       *observability.HealthRegistry

	// MetricsHandler serves Prometheus metrics when an exporter is configured.
	MetricsHandler http.Handler
}

// NewApp creates a new CLI application.
func NewApp(
	entitlements *entApp.Store,
	features *featuresApp.Gate,
	profiles *profilesApp.Service,
	sessions *identityApp.Service,
	notices *entApp.RecordingNotifier,
) *App {
	return &App{
		Entitlements: entitlements,
		Features:     features,
		Profiles:     profiles,
		Sessions:     sessions,
		Notices:      notices,
	}
}

// SetHealth attaches the health registry.
func (a *App) SetHealth(h *observability.HealthRegistry) {
	a.Health = h
}

// CurrentUserID returns the signed-in user, or "" when signed out.
func (a *App) CurrentUserID() string {
	if a == nil || a.Sessions == nil {
		return ""
	}
	id, _ := a.Sessions.CurrentUser()
	return id
}

// RequireUser returns the signed-in user or an error telling how to sign in.
func (a *App) RequireUser() (string, error) {
	id := a.CurrentUserID()
	if id == "" {
		return "", errors.New("not signed in; run `coachly auth login <user-id>` first")
	}
	return id, nil
}

// PrintNotices writes and forgets the notices raised by the last operation.
func (a *App) PrintNotices(w io.Writer) {
	if a == nil || a.Notices == nil {
		return
	}
	for _, n := range a.Notices.Drain() {
		fmt.Fprintf(w, "[%s] %s: %s\n", n.Kind, n.Title, n.Message)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Context returns ctx, or Background when nil.
func Context(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
