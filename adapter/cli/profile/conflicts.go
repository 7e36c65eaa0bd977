package profile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List unresolved profile conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, userID, err := requireProfiles()
		if err != nil {
			return err
		}

		conflicts, err := app.Profiles.PendingConflicts(cli.Context(cmd.Context()), userID)
		if err != nil {
			return err
		}
		if cli.JSONOutput() {
			if conflicts == nil {
				conflicts = []domain.ConflictRecord{}
			}
			return cli.PrintJSON(cmd.OutOrStdout(), conflicts)
		}

		w := cmd.OutOrStdout()
		if len(conflicts) == 0 {
			fmt.Fprintln(w, "No conflicts to resolve.")
			return nil
		}
		for _, c := range conflicts {
			fmt.Fprintf(w, "%s  %s\n", c.ID, c.Field)
			fmt.Fprintf(w, "  github:   %s (updated %s)\n", formatValue(c.GitHubValue), formatTime(c.GitHubUpdatedAt))
			fmt.Fprintf(w, "  linkedin: %s (updated %s)\n", formatValue(c.LinkedInValue), formatTime(c.LinkedInUpdatedAt))
		}
		return nil
	},
}
