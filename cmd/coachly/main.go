package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	cliAuth "github.com/felixgeelhaar/coachly/adapter/cli/auth"
	"github.com/felixgeelhaar/coachly/adapter/cli/features"
	"github.com/felixgeelhaar/coachly/adapter/cli/mcp"
	"github.com/felixgeelhaar/coachly/adapter/cli/premium"
	"github.com/felixgeelhaar/coachly/adapter/cli/profile"
	"github.com/felixgeelhaar/coachly/internal/app"
	mcpinternal "github.com/felixgeelhaar/coachly/internal/mcp"
	"github.com/felixgeelhaar/coachly/pkg/config"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development", Platform: "web"}
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:    cfg.LogLevel,
		Format:   observability.LogFormat(cfg.LogFormat),
		Platform: cfg.Platform,
	})
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		// Commands report ErrNotInitialized; version and help still work.
		logger.Error("failed to initialize container", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(mcpinternal.NewCLIApp(container))
	}

	cli.AddCommand(premium.Cmd)
	cli.AddCommand(features.Cmd)
	cli.AddCommand(profile.Cmd)
	cli.AddCommand(cliAuth.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
