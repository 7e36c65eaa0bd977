package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseError_IsMatchesKind(t *testing.T) {
	cause := errors.New("socket closed")
	err := domain.NewPurchaseError(domain.KindNetwork, cause)

	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrUserCancelled)

	wrapped := fmt.Errorf("purchase monthly: %w", err)
	assert.ErrorIs(t, wrapped, domain.ErrNetwork)
	assert.Equal(t, domain.KindNetwork, domain.KindOf(wrapped))
}

func TestPurchaseError_Message(t *testing.T) {
	assert.Equal(t, "purchase failed: unavailable", domain.ErrProductUnavailable.Error())
	assert.Equal(t,
		"purchase failed: unavailable: monthly package is not available",
		domain.Purchasef(domain.KindUnavailable, "%s package is not available", "monthly").Error(),
	)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(nil))
	assert.Equal(t, domain.KindUnknown, domain.KindOf(errors.New("boom")))
	assert.Equal(t, domain.KindNetwork, domain.KindOf(context.DeadlineExceeded))
	assert.Equal(t, domain.KindPlatformUnsupported, domain.KindOf(domain.ErrPlatformUnsupported))
}

func TestErrorKind_UserMessage(t *testing.T) {
	seen := map[string]domain.ErrorKind{}
	for _, kind := range domain.Kinds() {
		msg := kind.UserMessage()
		if kind == domain.KindUserCancelled {
			assert.Empty(t, msg)
			assert.True(t, kind.Silent())
			continue
		}
		assert.NotEmpty(t, msg, kind)
		assert.False(t, kind.Silent())
		if other, dup := seen[msg]; dup {
			t.Fatalf("kinds %s and %s share a message", kind, other)
		}
		seen[msg] = kind
	}
}
