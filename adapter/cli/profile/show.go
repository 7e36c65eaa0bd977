package profile

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the unified profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, userID, err := requireProfiles()
		if err != nil {
			return err
		}

		profile, err := app.Profiles.Profile(cli.Context(cmd.Context()), userID)
		if err != nil {
			return err
		}
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), profile)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Profile of %s\n", profile.UserID)
		if len(profile.Fields) == 0 {
			fmt.Fprintln(w, "  No fields set.")
		}
		names := make([]string, 0, len(profile.Fields))
		for name := range profile.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			field := profile.Fields[name]
			fmt.Fprintf(w, "  %-16s %s from %s\n", name, formatValue(field.Value), field.ResolvedBy)
		}
		if pending := len(profile.Pending()); pending > 0 {
			fmt.Fprintf(w, "\n%d unresolved conflict(s). Run 'coachly profile conflicts'.\n", pending)
		}
		return nil
	},
}
