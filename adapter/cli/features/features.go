package features

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

// Cmd is the features command group.
var Cmd = &cobra.Command{
	Use:   "features",
	Short: "Show which premium features are unlocked",
	Long: `Inspect the feature access table derived from your premium status.

Free accounts get a limited course catalog and no coaching sessions.
Premium unlocks every feature in full.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(coursesCmd)
}

func requireGate() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Features == nil {
		return nil, cli.ErrNotInitialized
	}
	return app, nil
}
