// Package domain models the signed-in session of the local user.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrUserIDRequired is returned when signing in without an id.
var ErrUserIDRequired = errors.New("user id is required")

// Session is the currently signed-in user.
type Session struct {
	UserID     string    `json:"user_id"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// NewSession starts a session for userID.
func NewSession(userID string, now time.Time) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, ErrUserIDRequired
	}
	return Session{UserID: userID, SignedInAt: now.UTC()}, nil
}

// IsZero reports whether nobody is signed in.
func (s Session) IsZero() bool {
	return s.UserID == ""
}

// Repository persists the session across process restarts.
type Repository interface {
	// Load returns the zero Session when nobody is signed in.
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}
