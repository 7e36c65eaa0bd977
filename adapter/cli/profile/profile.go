package profile

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

// Cmd is the profile command group.
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Resolve conflicts between GitHub and LinkedIn profile data",
	Long: `Your profile merges data from GitHub and LinkedIn. When both sources
disagree on a field, a conflict is recorded until you pick which value to keep.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(conflictsCmd)
	Cmd.AddCommand(addConflictCmd)
	Cmd.AddCommand(resolveCmd)
}

func requireProfiles() (*cli.App, string, error) {
	app := cli.GetApp()
	if app == nil || app.Profiles == nil {
		return nil, "", cli.ErrNotInitialized
	}
	userID, err := app.RequireUser()
	if err != nil {
		return nil, "", err
	}
	return app, userID, nil
}

func formatValue(v any) string {
	if v == nil {
		return "(empty)"
	}
	return fmt.Sprint(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}
