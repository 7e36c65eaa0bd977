package domain

import "context"

// Platform is the runtime a provider serves.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// ParsePlatform maps configuration input to a Platform. Unknown values are web.
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformIOS:
		return PlatformIOS
	case PlatformAndroid:
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// PurchaseProvider is the capability the entitlement store delegates to.
// Implementations are chosen once at construction time.
type PurchaseProvider interface {
	// Platform returns the runtime this provider serves.
	Platform() Platform

	// Identify associates the provider with appUserID and returns its snapshot.
	Identify(ctx context.Context, appUserID string) (CustomerInfo, error)

	// CurrentCustomer returns the snapshot for whoever is currently associated.
	CurrentCustomer(ctx context.Context) (CustomerInfo, error)

	// Offering returns the current purchasable bundle.
	Offering(ctx context.Context) (Offering, error)

	// Purchase buys pkg and returns the updated snapshot.
	Purchase(ctx context.Context, pkg Package) (CustomerInfo, error)

	// Restore looks up previous purchases and returns the resulting snapshot.
	Restore(ctx context.Context) (CustomerInfo, error)

	// Reset disassociates the current identity. It must be idempotent.
	Reset(ctx context.Context) error
}

// Simulator is implemented by providers that can grant premium without a
// real purchase, such as the web runtime's persisted flag.
type Simulator interface {
	SimulatePurchase(ctx context.Context, subscriptionType string) (CustomerInfo, error)
}
