package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/coachly/internal/app"
	mcpinternal "github.com/felixgeelhaar/coachly/internal/mcp"
	"github.com/felixgeelhaar/coachly/pkg/config"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.LogConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if cfg.IsDevelopment() {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      observability.LogFormat(cfg.LogFormat),
		Output:      os.Stdout,
		ServiceName: "coachly-mcp",
		Platform:    cfg.Platform,
	})

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cliApp := mcpinternal.NewCLIApp(container)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
