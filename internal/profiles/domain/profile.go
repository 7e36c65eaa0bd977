package domain

import (
	"context"
	"time"
)

// FieldValue is the retained value of one unified field and where it came
// from.
type FieldValue struct {
	Value      any            `json:"value"`
	ResolvedBy ResolutionKind `json:"resolved_by,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// UnifiedProfile merges the user's external profiles. Source records are
// never modified: only Fields and the conflict flags change.
type UnifiedProfile struct {
	UserID    string                `json:"user_id"`
	Fields    map[string]FieldValue `json:"fields"`
	Conflicts []ConflictRecord      `json:"conflicts"`
}

// NewUnifiedProfile creates an empty profile.
func NewUnifiedProfile(userID string) *UnifiedProfile {
	return &UnifiedProfile{
		UserID: userID,
		Fields: make(map[string]FieldValue),
	}
}

// AddConflict registers a divergence to be resolved.
func (p *UnifiedProfile) AddConflict(c ConflictRecord) {
	p.Conflicts = append(p.Conflicts, c)
}

// Conflict finds a conflict by id.
func (p *UnifiedProfile) Conflict(id string) (ConflictRecord, bool) {
	for _, c := range p.Conflicts {
		if c.ID == id {
			return c, true
		}
	}
	return ConflictRecord{}, false
}

// Pending returns the unresolved conflicts.
func (p *UnifiedProfile) Pending() []ConflictRecord {
	var out []ConflictRecord
	for _, c := range p.Conflicts {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

// Apply keeps the resolution's value for the conflicting field and marks
// the conflict resolved.
func (p *UnifiedProfile) Apply(res Resolution, now time.Time) (ConflictRecord, error) {
	idx := -1
	for i, c := range p.Conflicts {
		if c.ID == res.ConflictID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ConflictRecord{}, ErrConflictNotFound
	}
	conflict := p.Conflicts[idx]
	if conflict.Resolved {
		return ConflictRecord{}, ErrConflictAlreadyResolved
	}

	value, err := res.Value(conflict)
	if err != nil {
		return ConflictRecord{}, err
	}

	if p.Fields == nil {
		p.Fields = make(map[string]FieldValue)
	}
	p.Fields[conflict.Field] = FieldValue{Value: value, ResolvedBy: res.Kind, UpdatedAt: now}

	conflict.Resolved = true
	p.Conflicts[idx] = conflict
	return conflict, nil
}

// Repository persists unified profiles.
type Repository interface {
	// Load returns ErrProfileNotFound when userID has no profile.
	Load(ctx context.Context, userID string) (*UnifiedProfile, error)
	Save(ctx context.Context, profile *UnifiedProfile) error
}
