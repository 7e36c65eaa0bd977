package domain

const (
	AggregateType = "session"

	RoutingKeySignedIn  = "identity.signed_in"
	RoutingKeySignedOut = "identity.signed_out"
)

// SessionChanged is the payload of identity.signed_in and identity.signed_out.
type SessionChanged struct {
	UserID string `json:"user_id"`
}
