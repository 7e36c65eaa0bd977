package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
	shareddomain "github.com/felixgeelhaar/coachly/internal/shared/domain"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
)

// Service applies confirmed resolutions to stored profiles.
type Service struct {
	repo      domain.Repository
	publisher eventbus.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a profile service. publisher may be nil.
func NewService(repo domain.Repository, publisher eventbus.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "profiles"),
		now:       time.Now,
	}
}

// Profile loads the profile of userID, creating an empty one when missing.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.UnifiedProfile, error) {
	profile, err := s.repo.Load(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.NewUnifiedProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// PendingConflicts lists the conflicts still waiting for a choice.
func (s *Service) PendingConflicts(ctx context.Context, userID string) ([]domain.ConflictRecord, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.Pending(), nil
}

// RecordConflict stores a divergence reported by a sync.
func (s *Service) RecordConflict(ctx context.Context, userID string, conflict domain.ConflictRecord) error {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	profile.AddConflict(conflict)
	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Workflow starts resolving conflictID. Confirming it applies the choice
// through Resolve.
func (s *Service) Workflow(ctx context.Context, userID, conflictID string) (*Workflow, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	conflict, ok := profile.Conflict(conflictID)
	if !ok {
		return nil, domain.ErrConflictNotFound
	}
	if conflict.Resolved {
		return nil, domain.ErrConflictAlreadyResolved
	}
	return NewWorkflow(conflict, func(ctx context.Context, id string, kind domain.ResolutionKind, manual string) error {
		_, err := s.Resolve(ctx, userID, domain.Resolution{ConflictID: id, Kind: kind, ManualValue: manual})
		return err
	}), nil
}

// Resolve applies res to the profile of userID and persists it.
func (s *Service) Resolve(ctx context.Context, userID string, res domain.Resolution) (*domain.UnifiedProfile, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	conflict, err := profile.Apply(res, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile conflict resolved",
		"conflict_id", conflict.ID,
		"field", conflict.Field,
		"kind", res.Kind,
	)

	event, err := shareddomain.NewEvent(userID, domain.AggregateType, domain.RoutingKeyConflictResolved, domain.ConflictResolved{
		UserID:     userID,
		ConflictID: conflict.ID,
		Field:      conflict.Field,
		Kind:       res.Kind,
		Value:      profile.Fields[conflict.Field].Value,
	})
	if err == nil {
		err = eventbus.PublishEvent(ctx, s.publisher, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish conflict resolution", "error", err)
	}

	return profile, nil
}
