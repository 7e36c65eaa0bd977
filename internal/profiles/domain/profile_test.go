package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

func newProfileWithConflict() (*domain.UnifiedProfile, domain.ConflictRecord) {
	p := domain.NewUnifiedProfile("user-1")
	c := domain.NewConflict("headline",
		"Go hacker", "Senior Engineer at Coachly",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	p.AddConflict(c)
	return p, c
}

func TestUnifiedProfile_ApplyKinds(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		res  domain.Resolution
		want any
	}{
		{domain.Resolution{Kind: domain.ResolveGitHub}, "Go hacker"},
		{domain.Resolution{Kind: domain.ResolveLinkedIn}, "Senior Engineer at Coachly"},
		{domain.Resolution{Kind: domain.ResolveManual, ManualValue: "Coach"}, "Coach"},
	}
	for _, tt := range tests {
		t.Run(string(tt.res.Kind), func(t *testing.T) {
			p, c := newProfileWithConflict()
			tt.res.ConflictID = c.ID

			resolved, err := p.Apply(tt.res, now)
			require.NoError(t, err)
			assert.True(t, resolved.Resolved)
			assert.Equal(t, tt.want, p.Fields["headline"].Value)
			assert.Equal(t, tt.res.Kind, p.Fields["headline"].ResolvedBy)
			assert.Empty(t, p.Pending())

			// Source values are retained untouched on the record.
			got, _ := p.Conflict(c.ID)
			assert.Equal(t, "Go hacker", got.GitHubValue)
			assert.Equal(t, "Senior Engineer at Coachly", got.LinkedInValue)
		})
	}
}

func TestUnifiedProfile_ApplyErrors(t *testing.T) {
	p, c := newProfileWithConflict()
	now := time.Now()

	_, err := p.Apply(domain.Resolution{ConflictID: "missing", Kind: domain.ResolveGitHub}, now)
	assert.ErrorIs(t, err, domain.ErrConflictNotFound)

	_, err = p.Apply(domain.Resolution{ConflictID: c.ID, Kind: domain.ResolveManual}, now)
	assert.ErrorIs(t, err, domain.ErrManualValueRequired)

	_, err = p.Apply(domain.Resolution{ConflictID: c.ID, Kind: "coinflip"}, now)
	assert.ErrorIs(t, err, domain.ErrUnknownResolution)
	assert.Len(t, p.Pending(), 1, "failed applies leave the conflict open")

	_, err = p.Apply(domain.Resolution{ConflictID: c.ID, Kind: domain.ResolveGitHub}, now)
	require.NoError(t, err)
	_, err = p.Apply(domain.Resolution{ConflictID: c.ID, Kind: domain.ResolveLinkedIn}, now)
	assert.ErrorIs(t, err, domain.ErrConflictAlreadyResolved)
}

func TestParseResolutionKind(t *testing.T) {
	k, err := domain.ParseResolutionKind("linkedin")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolveLinkedIn, k)

	_, err = domain.ParseResolutionKind("twitter")
	assert.ErrorIs(t, err, domain.ErrUnknownResolution)
}
