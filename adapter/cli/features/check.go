package features

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/features/domain"
)

var checkLevel string

var checkCmd = &cobra.Command{
	Use:   "check <feature>",
	Short: "Check access to one feature",
	Long: `Check whether a feature is unlocked at the required level.

Examples:
  coachly features check certificates
  coachly features check unlimited_courses --level limited`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireGate()
		if err != nil {
			return err
		}
		feature, err := domain.ParseFeature(args[0])
		if err != nil {
			return err
		}
		required, err := domain.ParseAccessLevel(checkLevel)
		if err != nil {
			return err
		}

		allowed := app.Features.HasAccess(feature, required)
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), map[string]any{
				"feature":  feature,
				"required": required,
				"level":    app.Features.Table().Level(feature),
				"allowed":  allowed,
			})
		}
		if allowed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: allowed (%s)\n", feature, app.Features.Table().Level(feature))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: locked, requires premium\n", feature)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkLevel, "level", "full", "required access level (none, limited, full)")
}
