// Package purchases holds the PurchaseProvider implementations: the web
// runtime's locally simulated flag and the native purchase backend client.
package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/flags"
)

// DefaultWebOffering is the catalog shown on the web paywall. It can be
// displayed but never bought.
func DefaultWebOffering() domain.Offering {
	return domain.Offering{
		ID: "default",
		Packages: []domain.Package{
			{ID: "$rc_monthly", Type: domain.PackageMonthly, ProductID: "coachly_premium_monthly"},
			{ID: "$rc_annual", Type: domain.PackageAnnual, ProductID: "coachly_premium_annual"},
			{ID: "$rc_lifetime", Type: domain.PackageLifetime, ProductID: "coachly_premium_lifetime"},
		},
	}
}

// WebSimulatedProvider serves the web runtime, where no store is available.
// Premium comes only from the locally persisted flag.
type WebSimulatedProvider struct {
	store    flags.FlagStore
	scope    string
	offering domain.Offering
	now      func() time.Time
}

var (
	_ domain.PurchaseProvider = (*WebSimulatedProvider)(nil)
	_ domain.Simulator        = (*WebSimulatedProvider)(nil)
)

// NewWebSimulatedProvider creates a web provider reading the flag of scope.
func NewWebSimulatedProvider(store flags.FlagStore, scope string, offering domain.Offering) *WebSimulatedProvider {
	return &WebSimulatedProvider{
		store:    store,
		scope:    scope,
		offering: offering,
		now:      time.Now,
	}
}

func (p *WebSimulatedProvider) Platform() domain.Platform {
	return domain.PlatformWeb
}

// Identify ignores the identity: the flag is scoped to the device.
func (p *WebSimulatedProvider) Identify(ctx context.Context, appUserID string) (domain.CustomerInfo, error) {
	info, err := p.CurrentCustomer(ctx)
	if err != nil {
		return domain.CustomerInfo{}, err
	}
	info.AppUserID = appUserID
	return info, nil
}

func (p *WebSimulatedProvider) CurrentCustomer(ctx context.Context) (domain.CustomerInfo, error) {
	flag, err := p.store.Load(ctx, p.scope)
	if err != nil {
		return domain.CustomerInfo{}, fmt.Errorf("load premium flag: %w", err)
	}
	return customerFromFlag(flag), nil
}

func (p *WebSimulatedProvider) Offering(ctx context.Context) (domain.Offering, error) {
	return p.offering, nil
}

func (p *WebSimulatedProvider) Purchase(ctx context.Context, pkg domain.Package) (domain.CustomerInfo, error) {
	return domain.CustomerInfo{}, domain.ErrPlatformUnsupported
}

func (p *WebSimulatedProvider) Restore(ctx context.Context) (domain.CustomerInfo, error) {
	return domain.CustomerInfo{}, domain.ErrPlatformUnsupported
}

// Reset clears the persisted flag.
func (p *WebSimulatedProvider) Reset(ctx context.Context) error {
	if err := p.store.Clear(ctx, p.scope); err != nil {
		return fmt.Errorf("clear premium flag: %w", err)
	}
	return nil
}

// SimulatePurchase writes the flag as if subscriptionType had been bought.
func (p *WebSimulatedProvider) SimulatePurchase(ctx context.Context, subscriptionType string) (domain.CustomerInfo, error) {
	if subscriptionType == "" {
		subscriptionType = string(domain.PackageMonthly)
	}
	flag := flags.PremiumFlag{
		Simulated:        true,
		SubscriptionType: subscriptionType,
		PurchaseDate:     p.now().UTC(),
	}
	if err := p.store.Save(ctx, p.scope, flag); err != nil {
		return domain.CustomerInfo{}, fmt.Errorf("save premium flag: %w", err)
	}
	return p.CurrentCustomer(ctx)
}

func customerFromFlag(flag flags.PremiumFlag) domain.CustomerInfo {
	if !flag.Simulated {
		return domain.CustomerInfo{ActiveEntitlements: []domain.EntitlementID{}}
	}
	return domain.CustomerInfo{ActiveEntitlements: []domain.EntitlementID{domain.PremiumEntitlement}}
}
