package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

type loginInput struct {
	UserID string `json:"user_id" jsonschema:"required"`
}

type whoamiResult struct {
	UserID   string `json:"user_id,omitempty"`
	SignedIn bool   `json:"signed_in"`
}

func registerAuthTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("auth.whoami").
		Description("Show the signed-in user").
		Handler(func(ctx context.Context, input struct{}) (whoamiResult, error) {
			if app == nil || app.Sessions == nil {
				return whoamiResult{}, cli.ErrNotInitialized
			}
			userID := app.CurrentUserID()
			return whoamiResult{UserID: userID, SignedIn: userID != ""}, nil
		})

	srv.Tool("auth.login").
		Description("Sign in as a user; premium status follows the account").
		Handler(func(ctx context.Context, input loginInput) (whoamiResult, error) {
			if app == nil || app.Sessions == nil {
				return whoamiResult{}, cli.ErrNotInitialized
			}
			if err := app.Sessions.SignIn(ctx, input.UserID); err != nil {
				return whoamiResult{}, err
			}
			return whoamiResult{UserID: app.CurrentUserID(), SignedIn: true}, nil
		})

	srv.Tool("auth.logout").
		Description("Sign out; this also logs out of the purchase provider").
		Handler(func(ctx context.Context, input struct{}) (whoamiResult, error) {
			if app == nil || app.Sessions == nil {
				return whoamiResult{}, cli.ErrNotInitialized
			}
			if err := app.Sessions.SignOut(ctx); err != nil {
				return whoamiResult{}, err
			}
			return whoamiResult{}, nil
		})
}
