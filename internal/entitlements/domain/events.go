package domain

// Routing keys of entitlement events.
const (
	AggregateType = "entitlement"

	RoutingKeyPremiumActivated = "premium.activated"
	RoutingKeyPremiumRevoked   = "premium.revoked"
	RoutingKeyPurchaseFailed   = "purchase.failed"
)

// PremiumChanged is the payload of premium.activated and premium.revoked.
type PremiumChanged struct {
	AppUserID          string          `json:"app_user_id,omitempty"`
	Platform           Platform        `json:"platform"`
	Reason             string          `json:"reason"`
	ActiveEntitlements []EntitlementID `json:"active_entitlements"`
}

// PurchaseFailed is the payload of purchase.failed.
type PurchaseFailed struct {
	AppUserID string    `json:"app_user_id,omitempty"`
	Platform  Platform  `json:"platform"`
	PackageID string    `json:"package_id,omitempty"`
	Kind      ErrorKind `json:"kind"`
}
