package mcp

import (
	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.Entitlements,
		container.Features,
		container.Profiles,
		container.Sessions,
		container.Notices,
	)
	if container.Health != nil {
		cliApp.SetHealth(container.Health)
	}
	if container.Prometheus != nil {
		cliApp.MetricsHandler = container.Prometheus.Handler()
	}
	return cliApp
}
