package premium

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var statusRefresh bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show premium status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}
		if statusRefresh {
			if err := app.Entitlements.Refresh(cli.Context(cmd.Context())); err != nil {
				return err
			}
		}

		status := app.Entitlements.Status()
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), status)
		}
		printStatus(cmd.OutOrStdout(), app.Entitlements.Platform(), status)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "re-read the status from the purchase provider")
}
