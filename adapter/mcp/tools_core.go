package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("cli.health").
		Description("Check the health of the flag store, purchase backend and event broker").
		Handler(healthHandler(deps.App))
}

func healthHandler(app *cli.App) func(ctx context.Context, input struct{}) (map[string]any, error) {
	return func(ctx context.Context, input struct{}) (map[string]any, error) {
		if app == nil {
			return nil, cli.ErrNotInitialized
		}
		if app.Health == nil {
			return map[string]any{"status": observability.HealthStatusHealthy}, nil
		}
		results := app.Health.Check(ctx)
		return map[string]any{
			"status":     observability.Overall(results),
			"components": results,
		}, nil
	}
}
