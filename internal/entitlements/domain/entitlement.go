// Package domain models premium entitlements, offerings and the purchase
// provider contract.
package domain

import (
	"slices"
	"sort"
)

// EntitlementID names a grant a purchase provider attributes to a user.
type EntitlementID string

// PremiumEntitlement unlocks every premium feature.
const PremiumEntitlement EntitlementID = "premium"

// CustomerInfo is the provider's snapshot of what a user currently holds.
type CustomerInfo struct {
	AppUserID          string          `json:"app_user_id,omitempty"`
	ActiveEntitlements []EntitlementID `json:"active_entitlements"`
}

// HasAny reports whether the snapshot carries at least one active entitlement.
func (c CustomerInfo) HasAny() bool {
	return len(c.ActiveEntitlements) > 0
}

// Status is the entitlement state exposed to the rest of the application.
// It is a value: every change builds a new Status through NewStatus, so
// IsPremium and ActiveEntitlements can never disagree.
type Status struct {
	IsPremium          bool            `json:"is_premium"`
	ActiveEntitlements []EntitlementID `json:"active_entitlements"`
	Offering           Offering        `json:"offering"`
}

// NewStatus builds a status from an entitlement set. The set is copied,
// de-duplicated and sorted.
func NewStatus(active []EntitlementID, offering Offering) Status {
	set := make([]EntitlementID, 0, len(active))
	for _, id := range active {
		if id != "" && !slices.Contains(set, id) {
			set = append(set, id)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })

	return Status{
		IsPremium:          slices.Contains(set, PremiumEntitlement),
		ActiveEntitlements: set,
		Offering:           offering,
	}
}

// FreeStatus is the default state: no entitlements.
func FreeStatus(offering Offering) Status {
	return NewStatus(nil, offering)
}

// StatusFromCustomer derives a status from a provider snapshot.
func StatusFromCustomer(info CustomerInfo, offering Offering) Status {
	return NewStatus(info.ActiveEntitlements, offering)
}

// Has reports whether id is in the active set.
func (s Status) Has(id EntitlementID) bool {
	return slices.Contains(s.ActiveEntitlements, id)
}

// IsEmpty reports whether the user holds nothing.
func (s Status) IsEmpty() bool {
	return len(s.ActiveEntitlements) == 0
}

// WithOffering returns a copy of s carrying a different offering.
func (s Status) WithOffering(offering Offering) Status {
	return NewStatus(s.ActiveEntitlements, offering)
}

// Tier is the label shown to users.
func (s Status) Tier() string {
	if s.IsPremium {
		return "premium"
	}
	return "free"
}
