package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	profilesApp "github.com/felixgeelhaar/coachly/internal/profiles/application"
	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

type conflictInput struct {
	ConflictID string `json:"conflict_id" jsonschema:"required"`
}

type addConflictInput struct {
	Field             string `json:"field" jsonschema:"required"`
	GitHubValue       string `json:"github_value"`
	LinkedInValue     string `json:"linkedin_value"`
	GitHubUpdatedAt   string `json:"github_updated_at,omitempty"`
	LinkedInUpdatedAt string `json:"linkedin_updated_at,omitempty"`
}

type resolveInput struct {
	ConflictID string `json:"conflict_id" jsonschema:"required"`
	Use        string `json:"use" jsonschema:"required"`
	Value      string `json:"value,omitempty"`
}

type conflictOptions struct {
	Conflict domain.ConflictRecord `json:"conflict"`
	Options  []profilesApp.Option  `json:"options"`
}

func registerProfileTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("profile.show").
		Description("Show the unified profile of the signed-in user").
		Handler(func(ctx context.Context, input struct{}) (*domain.UnifiedProfile, error) {
			profiles, userID, err := requireProfiles(app)
			if err != nil {
				return nil, err
			}
			return profiles.Profile(ctx, userID)
		})

	srv.Tool("profile.conflicts").
		Description("List unresolved GitHub/LinkedIn profile conflicts").
		Handler(func(ctx context.Context, input struct{}) ([]domain.ConflictRecord, error) {
			profiles, userID, err := requireProfiles(app)
			if err != nil {
				return nil, err
			}
			conflicts, err := profiles.PendingConflicts(ctx, userID)
			if conflicts == nil && err == nil {
				conflicts = []domain.ConflictRecord{}
			}
			return conflicts, err
		})

	srv.Tool("profile.options").
		Description("Show the choices for resolving one conflict").
		Handler(func(ctx context.Context, input conflictInput) (conflictOptions, error) {
			profiles, userID, err := requireProfiles(app)
			if err != nil {
				return conflictOptions{}, err
			}
			workflow, err := profiles.Workflow(ctx, userID, input.ConflictID)
			if err != nil {
				return conflictOptions{}, err
			}
			return conflictOptions{Conflict: workflow.Conflict(), Options: workflow.Options()}, nil
		})

	srv.Tool("profile.add_conflict").
		Description("Record a field on which GitHub and LinkedIn disagree").
		Handler(addConflictHandler(app))

	srv.Tool("profile.resolve").
		Description("Resolve a conflict with the github, linkedin or manual value").
		Handler(resolveHandler(app))
}

func addConflictHandler(app *cli.App) func(ctx context.Context, input addConflictInput) (domain.ConflictRecord, error) {
	return func(ctx context.Context, input addConflictInput) (domain.ConflictRecord, error) {
		profiles, userID, err := requireProfiles(app)
		if err != nil {
			return domain.ConflictRecord{}, err
		}
		if input.Field == "" {
			return domain.ConflictRecord{}, errors.New("field is required")
		}
		if input.GitHubValue == input.LinkedInValue {
			return domain.ConflictRecord{}, errors.New("github and linkedin values are equal; nothing to resolve")
		}

		now := time.Now().UTC()
		githubAt, err := parseTimestamp("github_updated_at", input.GitHubUpdatedAt, now)
		if err != nil {
			return domain.ConflictRecord{}, err
		}
		linkedinAt, err := parseTimestamp("linkedin_updated_at", input.LinkedInUpdatedAt, now)
		if err != nil {
			return domain.ConflictRecord{}, err
		}

		conflict := domain.NewConflict(input.Field, input.GitHubValue, input.LinkedInValue, githubAt, linkedinAt)
		if err := profiles.RecordConflict(ctx, userID, conflict); err != nil {
			return domain.ConflictRecord{}, err
		}
		return conflict, nil
	}
}

func resolveHandler(app *cli.App) func(ctx context.Context, input resolveInput) (map[string]any, error) {
	return func(ctx context.Context, input resolveInput) (map[string]any, error) {
		profiles, userID, err := requireProfiles(app)
		if err != nil {
			return nil, err
		}

		workflow, err := profiles.Workflow(ctx, userID, input.ConflictID)
		if err != nil {
			return nil, err
		}
		if input.Use != "" {
			if err := workflow.Select(domain.ResolutionKind(input.Use)); err != nil {
				return nil, err
			}
		}
		workflow.SetManualText(input.Value)
		if err := workflow.Confirm(ctx); err != nil {
			return nil, err
		}

		field := workflow.Conflict().Field
		profile, err := profiles.Profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		kind, _ := workflow.Selected()
		return map[string]any{
			"conflict_id": input.ConflictID,
			"field":       field,
			"kind":        kind,
			"value":       profile.Fields[field].Value,
			"pending":     len(profile.Pending()),
		}, nil
	}
}

func parseTimestamp(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s, use RFC3339: %w", name, err)
	}
	return t, nil
}

func requireProfiles(app *cli.App) (*profilesApp.Service, string, error) {
	if app == nil || app.Profiles == nil {
		return nil, "", cli.ErrNotInitialized
	}
	userID, err := app.RequireUser()
	if err != nil {
		return nil, "", err
	}
	return app.Profiles, userID, nil
}
