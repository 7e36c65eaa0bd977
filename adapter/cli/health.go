package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		if app.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		results := app.Health.Check(Context(cmd.Context()))
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), map[string]any{
				"status":     observability.Overall(results),
				"components": results,
			})
		}
		for _, name := range app.Health.Names() {
			r := results[name]
			if Verbose() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-10s %-8s %s\n", name, r.Status, r.Duration.Round(time.Millisecond), r.Message)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-10s %s\n", name, r.Status, r.Message)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "overall: %s\n", observability.Overall(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
