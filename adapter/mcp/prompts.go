package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common coachly workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("premium_overview").
		Description("Explain what the current plan unlocks and whether upgrading is worth it.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Premium Overview", `Help me understand my coachly plan. Please:

1. Read my status from the coachly://premium/status resource
2. Read the feature table from the coachly://features resource

Then explain:
- Which features I can use today and at what level
- How many courses and coaching sessions I have
- What premium would add, comparing the monthly, annual and lifetime packages

If I decide to upgrade, use premium.purchase with the package I choose.
Purchases are not possible on the web runtime; say so instead of retrying.`), nil
		})

	srv.Prompt("course_enrollment").
		Description("Check whether a course can be taken before enrolling.").
		Argument("course", "Course id to check", true).
		Argument("enrolled", "Comma separated ids of courses already enrolled in", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			course := args["course"]
			if course == "" {
				course = "[Please specify the course]"
			}
			enrolled := args["enrolled"]
			if enrolled == "" {
				enrolled = "none"
			}
			return userPrompt("Course Enrollment", fmt.Sprintf(`I want to take the course %s.
Courses I am already enrolled in: %s

Use features.courses with this course and enrollment list to tell me whether
it is available. If it is locked, explain the free course limit and point me
to premium_overview.`, course, enrolled)), nil
		})

	srv.Prompt("resolve_profile_conflicts").
		Description("Walk through every unresolved GitHub/LinkedIn profile conflict.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Resolve Profile Conflicts", `My profile merges GitHub and LinkedIn. Help me clean up disagreements:

1. List the open conflicts from the coachly://profile/conflicts resource
2. For each one, call profile.options and show both values with when each was last updated

For every conflict ask me to keep the GitHub value, the LinkedIn value, or to
type my own. Suggest the more recently updated value as the default.
Apply my answer with profile.resolve. Nothing changes until I confirm, and
skipping a conflict leaves it open.`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
