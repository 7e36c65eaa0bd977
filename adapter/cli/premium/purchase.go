package premium

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase <monthly|annual|lifetime|package-id>",
	Short: "Buy a premium package",
	Long: `Buy a package of the current offering.

Examples:
  coachly premium purchase monthly
  coachly premium purchase '$rc_annual'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireStore()
		if err != nil {
			return err
		}
		ctx := cli.Context(cmd.Context())
		store := app.Entitlements

		switch domain.PackageType(args[0]) {
		case domain.PackageMonthly:
			err = store.PurchaseMonthly(ctx)
		case domain.PackageAnnual:
			err = store.PurchaseAnnual(ctx)
		case domain.PackageLifetime:
			err = store.PurchaseLifetime(ctx)
		default:
			pkg, ok := store.Status().Offering.PackageByID(args[0])
			if !ok {
				return fmt.Errorf("unknown package %q", args[0])
			}
			err = store.PurchasePackage(ctx, pkg)
		}

		app.PrintNotices(cmd.OutOrStdout())
		// The notice already told the user; a cancelled purchase is not a
		// command failure.
		if domain.KindOf(err).Silent() {
			return nil
		}
		return err
	},
}
