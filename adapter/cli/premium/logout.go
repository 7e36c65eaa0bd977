package premium

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget premium status on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}
		if err := app.Entitlements.Logout(cli.Context(cmd.Context())); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out of the purchase provider.")
		return nil
	},
}
