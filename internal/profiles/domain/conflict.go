// Package domain models the unified profile and the conflicts raised when
// GitHub and LinkedIn disagree on a field.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source is an external profile platform.
type Source string

const (
	SourceGitHub   Source = "github"
	SourceLinkedIn Source = "linkedin"
)

// ResolutionKind is how a conflict was settled.
type ResolutionKind string

const (
	ResolveGitHub   ResolutionKind = "github"
	ResolveLinkedIn ResolutionKind = "linkedin"
	ResolveManual   ResolutionKind = "manual"
)

// ParseResolutionKind validates a resolution name.
func ParseResolutionKind(s string) (ResolutionKind, error) {
	switch k := ResolutionKind(s); k {
	case ResolveGitHub, ResolveLinkedIn, ResolveManual:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResolution, s)
	}
}

// ConflictRecord is a field whose GitHub and LinkedIn values diverge.
type ConflictRecord struct {
	ID                string    `json:"id"`
	Field             string    `json:"field"`
	GitHubValue       any       `json:"github_value"`
	LinkedInValue     any       `json:"linkedin_value"`
	GitHubUpdatedAt   time.Time `json:"github_updated_at"`
	LinkedInUpdatedAt time.Time `json:"linkedin_updated_at"`
	Resolved          bool      `json:"resolved"`
}

// NewConflict records a divergence detected by a sync.
func NewConflict(field string, githubValue, linkedinValue any, githubAt, linkedinAt time.Time) ConflictRecord {
	return ConflictRecord{
		ID:                uuid.NewString(),
		Field:             field,
		GitHubValue:       githubValue,
		LinkedInValue:     linkedinValue,
		GitHubUpdatedAt:   githubAt,
		LinkedInUpdatedAt: linkedinAt,
	}
}

// Resolution is the user's confirmed choice for one conflict.
type Resolution struct {
	ConflictID  string         `json:"conflict_id"`
	Kind        ResolutionKind `json:"kind"`
	ManualValue string         `json:"manual_value,omitempty"`
}

// Value returns the value the resolution keeps for conflict.
func (r Resolution) Value(conflict ConflictRecord) (any, error) {
	switch r.Kind {
	case ResolveGitHub:
		return conflict.GitHubValue, nil
	case ResolveLinkedIn:
		return conflict.LinkedInValue, nil
	case ResolveManual:
		if r.ManualValue == "" {
			return nil, ErrManualValueRequired
		}
		return r.ManualValue, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolution, r.Kind)
	}
}
