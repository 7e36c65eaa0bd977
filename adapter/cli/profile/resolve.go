package profile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

var (
	resolveUse   string
	resolveValue string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id>",
	Short: "Keep one value for a conflicting field",
	Long: `Resolve a conflict by keeping the GitHub value, the LinkedIn value,
or a value you type yourself.

Examples:
  coachly profile resolve 6f1c... --use github
  coachly profile resolve 6f1c... --use manual --value "Staff Engineer"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, userID, err := requireProfiles()
		if err != nil {
			return err
		}
		ctx := cli.Context(cmd.Context())

		workflow, err := app.Profiles.Workflow(ctx, userID, args[0])
		if err != nil {
			return err
		}
		if resolveUse != "" {
			if err := workflow.Select(domain.ResolutionKind(resolveUse)); err != nil {
				return err
			}
		}
		workflow.SetManualText(resolveValue)
		// Confirm rejects a missing choice or an empty manual value.
		if err := workflow.Confirm(ctx); err != nil {
			return err
		}
		kind, _ := workflow.Selected()

		field := workflow.Conflict().Field
		profile, err := app.Profiles.Profile(ctx, userID)
		if err != nil {
			return err
		}
		kept := profile.Fields[field]
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), map[string]any{
				"conflict_id": args[0],
				"field":       field,
				"kind":        kind,
				"value":       kept.Value,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s: kept %s (%s)\n", field, formatValue(kept.Value), kind)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveUse, "use", "", "which value to keep: github, linkedin or manual")
	resolveCmd.Flags().StringVar(&resolveValue, "value", "", "value to keep when --use manual")
}
