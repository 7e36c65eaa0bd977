package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose premium and profile data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("coachly://premium/status").
		Name("Premium Status").
		Description("Premium tier, active entitlements and current offering").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			store, err := requireStore(app)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, map[string]any{
				"platform": store.Platform(),
				"tier":     store.Status().Tier(),
				"status":   store.Status(),
			})
		})

	srv.Resource("coachly://features").
		Name("Feature Access").
		Description("Access level of every premium feature and the course and coaching allowances").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			gate, err := requireGate(app)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, tableOf(gate))
		})

	srv.Resource("coachly://profile/conflicts").
		Name("Profile Conflicts").
		Description("Unresolved conflicts between GitHub and LinkedIn profile data").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			profiles, userID, err := requireProfiles(app)
			if err != nil {
				return nil, err
			}
			conflicts, err := profiles.PendingConflicts(ctx, userID)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, map[string]any{
				"user_id":   userID,
				"conflicts": conflicts,
			})
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
