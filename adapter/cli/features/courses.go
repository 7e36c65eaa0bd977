package features

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

var (
	coursesEnrolled []string
	coursesCourse   string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Show the course allowance",
	Long: `Show how many courses you may take and whether a given course is available.

Examples:
  coachly features courses
  coachly features courses --enrolled go-101,go-102 --course k8s-201`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireGate()
		if err != nil {
			return err
		}

		quota := app.Features.AvailableCourseCount()
		result := map[string]any{
			"allowed":  quota,
			"enrolled": len(coursesEnrolled),
		}
		if coursesCourse != "" {
			result["course"] = coursesCourse
			result["available"] = app.Features.IsCourseAvailable(coursesCourse, coursesEnrolled)
		}
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), result)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Courses allowed:  %s\n", quota)
		fmt.Fprintf(w, "Courses enrolled: %d\n", len(coursesEnrolled))
		if coursesCourse != "" {
			if result["available"].(bool) {
				fmt.Fprintf(w, "%s is available\n", coursesCourse)
			} else {
				fmt.Fprintf(w, "%s is locked, upgrade to premium for unlimited courses\n", coursesCourse)
			}
		}
		return nil
	},
}

func init() {
	coursesCmd.Flags().StringSliceVar(&coursesEnrolled, "enrolled", nil, "ids of courses already enrolled in")
	coursesCmd.Flags().StringVar(&coursesCourse, "course", "", "course id to check")
}
