// Package application drives conflict resolution: the per-conflict
// selection workflow and the service that applies confirmed choices.
package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

// ConfirmFunc receives a confirmed choice. manualValue is empty unless kind
// is manual.
type ConfirmFunc func(ctx context.Context, conflictID string, kind domain.ResolutionKind, manualValue string) error

// Option is one choice presented for a conflict.
type Option struct {
	Kind      domain.ResolutionKind `json:"kind"`
	Value     any                   `json:"value,omitempty"`
	UpdatedAt time.Time             `json:"updated_at,omitempty"`
}

// Workflow holds the in-progress selection for one conflict. Nothing is
// committed until Confirm.
type Workflow struct {
	conflict  domain.ConflictRecord
	onConfirm ConfirmFunc

	mu         sync.Mutex
	selected   domain.ResolutionKind
	manualText string
}

// NewWorkflow starts resolving conflict.
func NewWorkflow(conflict domain.ConflictRecord, onConfirm ConfirmFunc) *Workflow {
	return &Workflow{conflict: conflict, onConfirm: onConfirm}
}

// Conflict returns the conflict being resolved.
func (w *Workflow) Conflict() domain.ConflictRecord {
	return w.conflict
}

// Options lists both source values with their timestamps, then manual entry.
func (w *Workflow) Options() []Option {
	return []Option{
		{Kind: domain.ResolveGitHub, Value: w.conflict.GitHubValue, UpdatedAt: w.conflict.GitHubUpdatedAt},
		{Kind: domain.ResolveLinkedIn, Value: w.conflict.LinkedInValue, UpdatedAt: w.conflict.LinkedInUpdatedAt},
		{Kind: domain.ResolveManual},
	}
}

// Select chooses a resolution. Selecting again replaces the choice.
func (w *Workflow) Select(kind domain.ResolutionKind) error {
	if _, err := domain.ParseResolutionKind(string(kind)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = kind
	return nil
}

// SetManualText records the text used by the manual resolution.
func (w *Workflow) SetManualText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.manualText = text
}

// Selected returns the current choice, if any.
func (w *Workflow) Selected() (domain.ResolutionKind, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected, w.selected != ""
}

// CanConfirm reports whether Confirm would be accepted.
func (w *Workflow) CanConfirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validate() == nil
}

func (w *Workflow) validate() error {
	if w.selected == "" {
		return domain.ErrNoResolutionSelected
	}
	if w.selected == domain.ResolveManual && strings.TrimSpace(w.manualText) == "" {
		return domain.ErrManualValueRequired
	}
	return nil
}

// Confirm hands the choice to the callback. The selection survives a
// failed callback so the user can retry.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if err := w.validate(); err != nil {
		w.mu.Unlock()
		return err
	}
	kind := w.selected
	var manual string
	if kind == domain.ResolveManual {
		manual = strings.TrimSpace(w.manualText)
	}
	w.mu.Unlock()

	if w.onConfirm == nil {
		return nil
	}
	return w.onConfirm(ctx, w.conflict.ID, kind, manual)
}

// Cancel discards the in-progress selection.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = ""
	w.manualText = ""
}
