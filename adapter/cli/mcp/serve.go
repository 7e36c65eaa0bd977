package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/coachly/internal/mcp"
	"github.com/felixgeelhaar/coachly/pkg/config"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose premium status, feature checks and profile conflict resolution
to an assistant over MCP. Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logger := observability.NewLogger(observability.LogConfig{
			Level:       cfg.LogLevel,
			Format:      observability.LogFormat(cfg.LogFormat),
			Output:      cmd.ErrOrStderr(),
			ServiceName: "coachly-mcp",
			Platform:    cfg.Platform,
		})

		err = mcpinternal.Serve(cli.Context(cmd.Context()), cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to MCP_ADDR)")
}
