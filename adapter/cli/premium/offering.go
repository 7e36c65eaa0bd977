package premium

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var offeringCmd = &cobra.Command{
	Use:   "offering",
	Short: "List the packages of the current offering",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}

		offering := app.Entitlements.Status().Offering
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), offering)
		}
		if offering.IsEmpty() {
			fmt.Fprintln(cmd.OutOrStdout(), "No packages available.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Offering %s\n", offering.ID)
		for _, pkg := range offering.Packages {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %-16s %s\n", pkg.Type, pkg.ID, pkg.Price)
		}
		return nil
	},
}
