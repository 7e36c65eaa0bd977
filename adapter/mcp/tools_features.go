package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	featuresApp "github.com/felixgeelhaar/coachly/internal/features/application"
	"github.com/felixgeelhaar/coachly/internal/features/domain"
)

type featureCheckInput struct {
	Feature string `json:"feature" jsonschema:"required"`
	Level   string `json:"level,omitempty"`
}

type coursesInput struct {
	Enrolled []string `json:"enrolled,omitempty"`
	Course   string   `json:"course,omitempty"`
}

type featureTable struct {
	Premium  bool                   `json:"premium"`
	Features []domain.FeatureAccess `json:"features"`
	Courses  domain.Quota           `json:"courses"`
	Coaching domain.Quota           `json:"coaching_sessions"`
}

type featureCheckResult struct {
	Feature  domain.Feature     `json:"feature"`
	Required domain.AccessLevel `json:"required"`
	Level    domain.AccessLevel `json:"level"`
	Allowed  bool               `json:"allowed"`
}

type coursesResult struct {
	Allowed   domain.Quota `json:"allowed"`
	Enrolled  int          `json:"enrolled"`
	Course    string       `json:"course,omitempty"`
	Available *bool        `json:"available,omitempty"`
}

func registerFeatureTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("features.list").
		Description("List every premium feature with its access level").
		Handler(func(ctx context.Context, input struct{}) (featureTable, error) {
			gate, err := requireGate(app)
			if err != nil {
				return featureTable{}, err
			}
			return tableOf(gate), nil
		})

	srv.Tool("features.check").
		Description("Check whether a feature is unlocked at a level (none, limited, full; default full)").
		Handler(featureCheckHandler(app))

	srv.Tool("features.courses").
		Description("Show the course allowance and whether a course is available").
		Handler(coursesHandler(app))
}

func featureCheckHandler(app *cli.App) func(ctx context.Context, input featureCheckInput) (featureCheckResult, error) {
	return func(ctx context.Context, input featureCheckInput) (featureCheckResult, error) {
		gate, err := requireGate(app)
		if err != nil {
			return featureCheckResult{}, err
		}
		feature, err := domain.ParseFeature(input.Feature)
		if err != nil {
			return featureCheckResult{}, err
		}
		required, err := domain.ParseAccessLevel(input.Level)
		if err != nil {
			return featureCheckResult{}, err
		}
		return featureCheckResult{
			Feature:  feature,
			Required: required,
			Level:    gate.Table().Level(feature),
			Allowed:  gate.HasAccess(feature, required),
		}, nil
	}
}

func coursesHandler(app *cli.App) func(ctx context.Context, input coursesInput) (coursesResult, error) {
	return func(ctx context.Context, input coursesInput) (coursesResult, error) {
		gate, err := requireGate(app)
		if err != nil {
			return coursesResult{}, err
		}
		result := coursesResult{
			Allowed:  gate.AvailableCourseCount(),
			Enrolled: len(input.Enrolled),
			Course:   input.Course,
		}
		if input.Course != "" {
			available := gate.IsCourseAvailable(input.Course, input.Enrolled)
			result.Available = &available
		}
		return result, nil
	}
}

func tableOf(gate *featuresApp.Gate) featureTable {
	table := gate.Table()
	return featureTable{
		Premium:  table.IsPremium(),
		Features: table.Levels(),
		Courses:  table.CourseQuota(),
		Coaching: table.CoachingQuota(),
	}
}

func requireGate(app *cli.App) (*featuresApp.Gate, error) {
	if app == nil || app.Features == nil {
		return nil, cli.ErrNotInitialized
	}
	return app.Features, nil
}
