package premium

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [monthly|annual|lifetime]",
	Short: "Grant premium locally (web runtime only)",
	Long: `Write the local premium flag as if a plan had been bought.
Only the web runtime supports this; use 'premium logout' to clear it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}
		plan := string(domain.PackageMonthly)
		if len(args) == 1 {
			plan = args[0]
		}

		err = app.Entitlements.SimulatePremium(cli.Context(cmd.Context()), plan)
		if errors.Is(err, domain.ErrPlatformUnsupported) {
			return fmt.Errorf("simulated purchases are only available on the web runtime")
		}
		if err != nil {
			return err
		}
		app.PrintNotices(cmd.OutOrStdout())
		return nil
	},
}
