package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	entApp "github.com/felixgeelhaar/coachly/internal/entitlements/application"
	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

type purchaseInput struct {
	Package string `json:"package" jsonschema:"required"`
}

type simulateInput struct {
	Plan string `json:"plan,omitempty"`
}

type statusInput struct {
	Refresh bool `json:"refresh,omitempty"`
}

// operationResult reports a store operation with the notices it raised.
type operationResult struct {
	Status  domain.Status   `json:"status"`
	Notices []entApp.Notice `json:"notices,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    string          `json:"kind,omitempty"`
}

func registerPremiumTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("premium.status").
		Description("Get premium status and active entitlements").
		Handler(premiumStatusHandler(app))

	srv.Tool("premium.offering").
		Description("List the packages of the current offering").
		Handler(func(ctx context.Context, input struct{}) (domain.Offering, error) {
			store, err := requireStore(app)
			if err != nil {
				return domain.Offering{}, err
			}
			return store.Status().Offering, nil
		})

	srv.Tool("premium.purchase").
		Description("Buy a premium package. Not available on the web runtime").
		Handler(premiumPurchaseHandler(app))

	srv.Tool("premium.restore").
		Description("Restore previous purchases").
		Handler(func(ctx context.Context, input struct{}) (operationResult, error) {
			store, err := requireStore(app)
			if err != nil {
				return operationResult{}, err
			}
			ctx, notices := perCall(ctx)
			_, err = store.RestorePurchases(ctx)
			return finish(app, notices, err)
		})

	srv.Tool("premium.logout").
		Description("Log out of the purchase provider and drop premium status").
		Handler(func(ctx context.Context, input struct{}) (operationResult, error) {
			store, err := requireStore(app)
			if err != nil {
				return operationResult{}, err
			}
			ctx, notices := perCall(ctx)
			return finish(app, notices, store.Logout(ctx))
		})

	srv.Tool("premium.simulate").
		Description("Grant premium locally for testing (web runtime only)").
		Handler(func(ctx context.Context, input simulateInput) (operationResult, error) {
			store, err := requireStore(app)
			if err != nil {
				return operationResult{}, err
			}
			plan := input.Plan
			if plan == "" {
				plan = string(domain.PackageMonthly)
			}
			ctx, notices := perCall(ctx)
			return finish(app, notices, store.SimulatePremium(ctx, plan))
		})
}

func premiumStatusHandler(app *cli.App) func(ctx context.Context, input statusInput) (domain.Status, error) {
	return func(ctx context.Context, input statusInput) (domain.Status, error) {
		store, err := requireStore(app)
		if err != nil {
			return domain.Status{}, err
		}
		if input.Refresh {
			if err := store.Refresh(ctx); err != nil {
				return domain.Status{}, err
			}
		}
		return store.Status(), nil
	}
}

func premiumPurchaseHandler(app *cli.App) func(ctx context.Context, input purchaseInput) (operationResult, error) {
	return func(ctx context.Context, input purchaseInput) (operationResult, error) {
		store, err := requireStore(app)
		if err != nil {
			return operationResult{}, err
		}
		if input.Package == "" {
			return operationResult{}, errors.New("package is required")
		}

		ctx, notices := perCall(ctx)
		switch domain.PackageType(input.Package) {
		case domain.PackageMonthly:
			err = store.PurchaseMonthly(ctx)
		case domain.PackageAnnual:
			err = store.PurchaseAnnual(ctx)
		case domain.PackageLifetime:
			err = store.PurchaseLifetime(ctx)
		default:
			pkg, ok := store.Status().Offering.PackageByID(input.Package)
			if !ok {
				return operationResult{}, fmt.Errorf("unknown package %q", input.Package)
			}
			err = store.PurchasePackage(ctx, pkg)
		}
		return finish(app, notices, err)
	}
}

// perCall gives one tool call its own notice recorder so overlapping calls
// never see each other's notices.
func perCall(ctx context.Context) (context.Context, *entApp.RecordingNotifier) {
	notices := &entApp.RecordingNotifier{}
	return entApp.WithNoticeRecorder(ctx, notices), notices
}

// finish turns a purchase failure into a result so the notice reaches the
// assistant. Busy and not-ready errors are returned as tool errors.
func finish(app *cli.App, notices *entApp.RecordingNotifier, err error) (operationResult, error) {
	if errors.Is(err, domain.ErrOperationInProgress) || errors.Is(err, domain.ErrNotReady) {
		return operationResult{}, err
	}
	result := operationResult{
		Status:  app.Entitlements.Status(),
		Notices: notices.Drain(),
	}
	if err != nil {
		kind := domain.KindOf(err)
		result.Kind = string(kind)
		if !kind.Silent() {
			result.Error = err.Error()
		}
	}
	return result, nil
}

func requireStore(app *cli.App) (*entApp.Store, error) {
	if app == nil || app.Entitlements == nil {
		return nil, cli.ErrNotInitialized
	}
	return app.Entitlements, nil
}
