package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

var (
	addField      string
	addGitHub     string
	addLinkedIn   string
	addGitHubAt   string
	addLinkedInAt string
)

var addConflictCmd = &cobra.Command{
	Use:   "add-conflict",
	Short: "Record a field on which GitHub and LinkedIn disagree",
	Long: `Record a conflict as a profile sync would.

Examples:
  coachly profile add-conflict --field headline --github "Gopher" --linkedin "Senior Engineer"
  coachly profile add-conflict --field location --github Berlin --linkedin Hamburg \
    --github-at 2026-01-10T09:00:00Z --linkedin-at 2026-02-01T12:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, userID, err := requireProfiles()
		if err != nil {
			return err
		}
		if addField == "" {
			return errors.New("--field is required")
		}
		if addGitHub == addLinkedIn {
			return errors.New("github and linkedin values are equal; nothing to resolve")
		}

		now := time.Now().UTC()
		githubAt, err := parseTimeFlag("--github-at", addGitHubAt, now)
		if err != nil {
			return err
		}
		linkedinAt, err := parseTimeFlag("--linkedin-at", addLinkedInAt, now)
		if err != nil {
			return err
		}

		conflict := domain.NewConflict(addField, addGitHub, addLinkedIn, githubAt, linkedinAt)
		if err := app.Profiles.RecordConflict(cli.Context(cmd.Context()), userID, conflict); err != nil {
			return err
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), conflict)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded conflict %s on %s\n", conflict.ID, conflict.Field)
		return nil
	},
}

func parseTimeFlag(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

func init() {
	addConflictCmd.Flags().StringVar(&addField, "field", "", "profile field name")
	addConflictCmd.Flags().StringVar(&addGitHub, "github", "", "value reported by GitHub")
	addConflictCmd.Flags().StringVar(&addLinkedIn, "linkedin", "", "value reported by LinkedIn")
	addConflictCmd.Flags().StringVar(&addGitHubAt, "github-at", "", "when GitHub last changed the value (RFC3339)")
	addConflictCmd.Flags().StringVar(&addLinkedInAt, "linkedin-at", "", "when LinkedIn last changed the value (RFC3339)")
}
