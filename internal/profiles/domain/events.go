package domain

// Profile event routing.
const (
	AggregateType = "profile"

	RoutingKeyConflictResolved = "profile.conflict_resolved"
)

// ConflictResolved is the payload of profile.conflict_resolved.
type ConflictResolved struct {
	UserID     string         `json:"user_id"`
	ConflictID string         `json:"conflict_id"`
	Field      string         `json:"field"`
	Kind       ResolutionKind `json:"kind"`
	Value      any            `json:"value"`
}
