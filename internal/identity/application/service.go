// Package application holds the session service the rest of the app asks
// "who is signed in".
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/coachly/internal/identity/domain"
	shareddomain "github.com/felixgeelhaar/coachly/internal/shared/domain"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
)

// Listener is told about sign-in and sign-out.
type Listener func(ctx context.Context, userID string, signedIn bool)

// Service tracks the signed-in user.
type Service struct {
	repo      domain.Repository
	publisher eventbus.Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	session   domain.Session
	listeners map[int]Listener
	nextID    int
}

// NewService creates a session service. Call Load to restore a persisted
// session.
func NewService(repo domain.Repository, publisher eventbus.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "identity"),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// Load restores the persisted session without notifying listeners.
func (s *Service) Load(ctx context.Context) error {
	session, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return nil
}

// CurrentUser returns the signed-in user id.
func (s *Service) CurrentUser() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.UserID, !s.session.IsZero()
}

// Subscribe registers fn for session changes.
func (s *Service) Subscribe(fn func(ctx context.Context, userID string, signedIn bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SignIn starts a session for userID. Signing in as the current user does
// nothing.
func (s *Service) SignIn(ctx context.Context, userID string) error {
	session, err := domain.NewSession(userID, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	same := s.session.UserID == session.UserID
	s.mu.Unlock()
	if same {
		return nil
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "signed in", "user_id", session.UserID)
	s.emit(ctx, session.UserID, true)
	return nil
}

// SignOut ends the session. Signing out twice is a no-op.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	previous := s.session
	s.mu.Unlock()
	if previous.IsZero() {
		return nil
	}

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "signed out", "user_id", previous.UserID)
	s.emit(ctx, previous.UserID, false)
	return nil
}

func (s *Service) emit(ctx context.Context, userID string, signedIn bool) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, userID, signedIn)
	}

	routingKey := domain.RoutingKeySignedOut
	if signedIn {
		routingKey = domain.RoutingKeySignedIn
	}
	event, err := shareddomain.NewEvent(userID, domain.AggregateType, routingKey, domain.SessionChanged{UserID: userID})
	if err == nil {
		err = eventbus.PublishEvent(ctx, s.publisher, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish session event", "error", err)
	}
}
