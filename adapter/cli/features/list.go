package features

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/features/domain"
)

type accessTable struct {
	Premium  bool                   `json:"premium"`
	Features []domain.FeatureAccess `json:"features"`
	Courses  domain.Quota           `json:"courses"`
	Coaching domain.Quota           `json:"coaching_sessions"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every feature with its access level",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireGate()
		if err != nil {
			return err
		}

		table := app.Features.Table()
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), accessTable{
				Premium:  table.IsPremium(),
				Features: table.Levels(),
				Courses:  table.CourseQuota(),
				Coaching: table.CoachingQuota(),
			})
		}

		w := cmd.OutOrStdout()
		for _, row := range table.Levels() {
			fmt.Fprintf(w, "%-22s %s\n", row.Feature, row.Level)
		}
		fmt.Fprintf(w, "\nCourses:           %s\n", table.CourseQuota())
		fmt.Fprintf(w, "Coaching sessions: %s\n", table.CoachingQuota())
		return nil
	},
}
