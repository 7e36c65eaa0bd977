package premium

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore previous purchases",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}

		result, err := app.Entitlements.RestorePurchases(cli.Context(cmd.Context()))
		app.PrintNotices(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), result)
		}
		return nil
	},
}
