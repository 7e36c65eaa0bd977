// Package application exposes the feature gate: premium-derived answers to
// "is this allowed" and "how many are allowed".
package application

import (
	"log/slog"
	"slices"
	"sync"

	entdomain "github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/felixgeelhaar/coachly/internal/features/domain"
)

// StatusSource provides the entitlement status and its changes.
type StatusSource interface {
	Status() entdomain.Status
	Subscribe(fn func(entdomain.Status)) (unsubscribe func())
}

// Gate answers feature queries from a table it rebuilds on every status
// change.
type Gate struct {
	logger *slog.Logger

	mu          sync.RWMutex
	table       domain.Table
	notified    bool
	unsubscribe func()
}

// NewGate creates a gate following source.
func NewGate(source StatusSource, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{logger: logger.With("component", "features")}
	// Subscribe before reading so no change between the two is lost. A
	// delivery that lands first is newer than the read and wins.
	g.unsubscribe = source.Subscribe(g.apply)
	initial := domain.NewTable(source.Status().IsPremium)

	g.mu.Lock()
	if !g.notified {
		g.table = initial
	}
	g.mu.Unlock()
	return g
}

func (g *Gate) apply(status entdomain.Status) {
	table := domain.NewTable(status.IsPremium)

	g.mu.Lock()
	changed := g.table.IsPremium() != table.IsPremium()
	g.table = table
	g.notified = true
	g.mu.Unlock()

	if changed {
		g.logger.Debug("feature table rebuilt", "premium", table.IsPremium())
	}
}

// Table returns the current access table.
func (g *Gate) Table() domain.Table {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.table
}

// IsPremium reports whether the table was derived from a premium status.
func (g *Gate) IsPremium() bool {
	return g.Table().IsPremium()
}

// HasAccess reports whether feature is available at the required level.
func (g *Gate) HasAccess(feature domain.Feature, required domain.AccessLevel) bool {
	return g.Table().HasAccess(feature, required)
}

// HasFullAccess reports whether feature is fully available.
func (g *Gate) HasFullAccess(feature domain.Feature) bool {
	return g.HasAccess(feature, domain.AccessFull)
}

// AvailableCourseCount is how many courses the user may enroll in.
func (g *Gate) AvailableCourseCount() domain.Quota {
	return g.Table().CourseQuota()
}

// AvailableCoachingCount is how many coaching sessions the user may book.
func (g *Gate) AvailableCoachingCount() domain.Quota {
	return g.Table().CoachingQuota()
}

// IsCourseAvailable reports whether courseID can be opened given the
// courses the user is already enrolled in.
func (g *Gate) IsCourseAvailable(courseID string, enrolled []string) bool {
	table := g.Table()
	if table.IsPremium() {
		return true
	}
	if slices.Contains(enrolled, courseID) {
		return true
	}
	return table.CourseQuota().Allows(len(enrolled))
}

// Close stops following the status source.
func (g *Gate) Close() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
