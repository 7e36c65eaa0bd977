// Package flags persists the locally simulated premium flag used by the web
// runtime. Every backend stores the same three keys per scope.
package flags

import (
	"context"
	"strconv"
	"time"
)

// Persisted keys.
const (
	KeySimulated        = "premium_simulated"
	KeySubscriptionType = "subscription_type"
	KeyPurchaseDate     = "purchase_date"
)

// PremiumFlag is the locally persisted premium grant.
type PremiumFlag struct {
	Simulated        bool      `json:"premium_simulated"`
	SubscriptionType string    `json:"subscription_type,omitempty"`
	PurchaseDate     time.Time `json:"purchase_date,omitempty"`
}

// IsZero reports whether nothing is stored.
func (f PremiumFlag) IsZero() bool {
	return !f.Simulated && f.SubscriptionType == "" && f.PurchaseDate.IsZero()
}

// Values flattens the flag into its key/value form.
func (f PremiumFlag) Values() map[string]string {
	values := map[string]string{
		KeySimulated: strconv.FormatBool(f.Simulated),
	}
	if f.SubscriptionType != "" {
		values[KeySubscriptionType] = f.SubscriptionType
	}
	if !f.PurchaseDate.IsZero() {
		values[KeyPurchaseDate] = f.PurchaseDate.UTC().Format(time.RFC3339)
	}
	return values
}

// FlagFromValues rebuilds a flag from stored key/values. Malformed values
// read as their zero value so a corrupted store degrades to "not premium".
func FlagFromValues(values map[string]string) PremiumFlag {
	var f PremiumFlag
	if v, ok := values[KeySimulated]; ok {
		f.Simulated, _ = strconv.ParseBool(v)
	}
	f.SubscriptionType = values[KeySubscriptionType]
	if v, ok := values[KeyPurchaseDate]; ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			f.PurchaseDate = ts
		}
	}
	return f
}

// FlagStore persists one PremiumFlag per scope. Writes are last-write-wins.
type FlagStore interface {
	// Load returns the stored flag, or the zero flag when none exists.
	Load(ctx context.Context, scope string) (PremiumFlag, error)

	// Save replaces the stored flag.
	Save(ctx context.Context, scope string, flag PremiumFlag) error

	// Clear removes the stored flag. Clearing an absent flag is not an error.
	Clear(ctx context.Context, scope string) error
}
