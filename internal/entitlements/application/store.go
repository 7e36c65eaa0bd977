// Package application holds the entitlement store: the single owner of the
// user's premium status.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	shareddomain "github.com/felixgeelhaar/coachly/internal/shared/domain"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

// State is the lifecycle of the store.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
)

// SessionProvider is the auth collaborator. Subscribe delivers sign-in
// (signedIn true with the user id) and sign-out changes.
type SessionProvider interface {
	CurrentUser() (string, bool)
	Subscribe(fn func(ctx context.Context, userID string, signedIn bool)) (unsubscribe func())
}

// RestoreResult reports what a restore found.
type RestoreResult struct {
	Restored bool          `json:"restored"`
	Status   domain.Status `json:"status"`
}

// Option configures a Store.
type Option func(*Store)

// WithSession attaches the session provider.
func WithSession(session SessionProvider) Option {
	return func(s *Store) { s.session = session }
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithPublisher sets the event publisher.
func WithPublisher(p eventbus.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m observability.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// sessionChange is a sign-in or sign-out waiting for the running operation.
type sessionChange struct {
	userID   string
	signedIn bool
}

// Store owns the entitlement status. The status is replaced wholesale under
// mu and listeners receive the new value after mu is released.
type Store struct {
	provider  domain.PurchaseProvider
	session   SessionProvider
	notifier  Notifier
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger

	mu           sync.Mutex
	state        State
	status       domain.Status
	appUserID    string
	busy         bool
	pending      *sessionChange
	listeners    map[int]func(domain.Status)
	nextListener int
	unsubscribe  func()
}

// NewStore creates a store delegating to provider.
func NewStore(provider domain.PurchaseProvider, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		provider:  provider,
		logger:    logger.With("component", "entitlements"),
		metrics:   observability.NoopMetrics{},
		state:     StateUninitialized,
		status:    domain.FreeStatus(domain.Offering{}),
		listeners: make(map[int]func(domain.Status)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	return s
}

// Platform returns the runtime of the underlying provider.
func (s *Store) Platform() domain.Platform {
	return s.provider.Platform()
}

// Status returns the current status.
func (s *Store) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsLoading reports whether initialization or an operation is running.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateReady || s.busy
}

// AppUserID returns the identity the store was last identified with.
func (s *Store) AppUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appUserID
}

// Subscribe registers fn for every status change.
func (s *Store) Subscribe(fn func(domain.Status)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Initialize loads the offering and the current customer. Failures are
// logged and the store still ends Ready with a free status.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = StateInitializing
	s.mu.Unlock()

	offering, err := s.provider.Offering(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load offering", "error", err)
		offering = domain.Offering{}
	}

	var userID string
	var signedIn bool
	if s.session != nil {
		userID, signedIn = s.session.CurrentUser()
	}

	var info domain.CustomerInfo
	if signedIn {
		info, err = s.provider.Identify(ctx, userID)
	} else {
		info, err = s.provider.CurrentCustomer(ctx)
	}
	status := domain.FreeStatus(offering)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load customer info", "error", err)
	} else {
		status = domain.StatusFromCustomer(info, offering)
	}

	s.mu.Lock()
	s.state = StateReady
	if signedIn {
		s.appUserID = userID
	}
	s.mu.Unlock()

	s.setStatus(ctx, status, "initialize")

	if s.session != nil {
		unsubscribe := s.session.Subscribe(s.onSessionChange)
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}

	s.logger.InfoContext(ctx, "entitlements initialized",
		"platform", s.provider.Platform(),
		"tier", status.Tier(),
	)
}

// Refresh re-reads the customer snapshot from the provider.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end(ctx)

	info, err := s.provider.CurrentCustomer(ctx)
	if err != nil {
		return fmt.Errorf("refresh customer info: %w", err)
	}
	s.setStatus(ctx, domain.StatusFromCustomer(info, s.Status().Offering), "refresh")
	return nil
}

// PurchasePackage buys pkg through the provider.
func (s *Store) PurchasePackage(ctx context.Context, pkg domain.Package) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end(ctx)

	tags := []observability.Tag{
		observability.T("platform", string(s.provider.Platform())),
		observability.T("package", string(pkg.Type)),
	}
	s.metrics.Counter(observability.MetricPurchaseAttempt, 1, tags...)

	info, err := s.provider.Purchase(ctx, pkg)
	if err != nil {
		s.purchaseFailed(ctx, pkg, err, tags)
		return err
	}

	s.metrics.Counter(observability.MetricPurchaseSucceeded, 1, tags...)
	s.setStatus(ctx, domain.StatusFromCustomer(info, s.Status().Offering), "purchase")
	s.notifier.Notify(ctx, Notice{
		Kind:    NoticeSuccess,
		Title:   "Welcome to Premium!",
		Message: "Your subscription is now active. Enjoy all premium features!",
	})
	return nil
}

// PurchaseMonthly buys the monthly package of the current offering.
func (s *Store) PurchaseMonthly(ctx context.Context) error {
	return s.purchaseType(ctx, domain.PackageMonthly)
}

// PurchaseAnnual buys the annual package of the current offering.
func (s *Store) PurchaseAnnual(ctx context.Context) error {
	return s.purchaseType(ctx, domain.PackageAnnual)
}

// PurchaseLifetime buys the lifetime package of the current offering.
func (s *Store) PurchaseLifetime(ctx context.Context) error {
	return s.purchaseType(ctx, domain.PackageLifetime)
}

func (s *Store) purchaseType(ctx context.Context, t domain.PackageType) error {
	pkg, ok := s.Status().Offering.Package(t)
	if !ok {
		err := domain.Purchasef(domain.KindUnavailable, "%s package is not available", t)
		s.notifier.Notify(ctx, Notice{
			Kind:    NoticeError,
			Title:   "Purchase Failed",
			Message: fmt.Sprintf("The %s package is not available.", t),
		})
		return err
	}
	return s.PurchasePackage(ctx, pkg)
}

func (s *Store) purchaseFailed(ctx context.Context, pkg domain.Package, err error, tags []observability.Tag) {
	kind := domain.KindOf(err)
	s.metrics.Counter(observability.MetricPurchaseFailed, 1, append(tags, observability.T("kind", string(kind)))...)

	if kind.Silent() {
		s.logger.InfoContext(ctx, "purchase cancelled by user", "package", pkg.ID)
		return
	}

	s.logger.WarnContext(ctx, "purchase failed", "package", pkg.ID, "kind", kind, "error", err)
	s.notifier.Notify(ctx, Notice{
		Kind:    NoticeError,
		Title:   "Purchase Failed",
		Message: kind.UserMessage(),
	})
	s.publish(ctx, domain.RoutingKeyPurchaseFailed, domain.PurchaseFailed{
		AppUserID: s.AppUserID(),
		Platform:  s.provider.Platform(),
		PackageID: pkg.ID,
		Kind:      kind,
	})
}

// RestorePurchases asks the provider for previous purchases. An empty
// snapshot leaves the status untouched and is not an error.
func (s *Store) RestorePurchases(ctx context.Context) (RestoreResult, error) {
	if err := s.begin(); err != nil {
		return RestoreResult{}, err
	}
	defer s.end(ctx)

	platform := observability.T("platform", string(s.provider.Platform()))

	info, err := s.provider.Restore(ctx)
	if err != nil {
		kind := domain.KindOf(err)
		s.logger.WarnContext(ctx, "restore failed", "kind", kind, "error", err)
		if !kind.Silent() {
			s.notifier.Notify(ctx, Notice{
				Kind:    NoticeError,
				Title:   "Restore Failed",
				Message: kind.UserMessage(),
			})
		}
		return RestoreResult{Status: s.Status()}, err
	}

	if !info.HasAny() {
		s.metrics.Counter(observability.MetricRestoreEmpty, 1, platform)
		s.notifier.Notify(ctx, Notice{
			Kind:    NoticeInfo,
			Title:   "No Purchases Found",
			Message: "No purchases found",
		})
		return RestoreResult{Status: s.Status()}, nil
	}

	status := domain.StatusFromCustomer(info, s.Status().Offering)
	s.metrics.Counter(observability.MetricRestoreSucceeded, 1, platform)
	s.setStatus(ctx, status, "restore")
	s.notifier.Notify(ctx, Notice{
		Kind:    NoticeSuccess,
		Title:   "Purchases Restored",
		Message: "Your purchases have been restored successfully.",
	})
	return RestoreResult{Restored: true, Status: status}, nil
}

// Logout disassociates the identity and drops every entitlement. Calling it
// again with nothing left to clear does nothing.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end(ctx)

	return s.logout(ctx)
}

func (s *Store) logout(ctx context.Context) error {
	s.mu.Lock()
	nothingToClear := s.status.IsEmpty() && s.appUserID == ""
	s.mu.Unlock()
	if nothingToClear {
		return nil
	}

	if err := s.provider.Reset(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to reset purchase provider", "error", err)
		return fmt.Errorf("reset purchase provider: %w", err)
	}

	s.mu.Lock()
	s.appUserID = ""
	offering := s.status.Offering
	s.mu.Unlock()

	s.setStatus(ctx, domain.FreeStatus(offering), "logout")
	return nil
}

// SimulatePremium grants premium locally on providers that support it.
func (s *Store) SimulatePremium(ctx context.Context, plan string) error {
	sim, ok := s.provider.(domain.Simulator)
	if !ok {
		return domain.ErrPlatformUnsupported
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end(ctx)

	info, err := sim.SimulatePurchase(ctx, plan)
	if err != nil {
		return fmt.Errorf("simulate purchase: %w", err)
	}
	s.setStatus(ctx, domain.StatusFromCustomer(info, s.Status().Offering), "simulated")
	s.notifier.Notify(ctx, Notice{
		Kind:    NoticeSuccess,
		Title:   "Premium Activated",
		Message: "Premium has been activated locally for testing.",
	})
	return nil
}

// Close detaches from the session provider and drops every listener.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.listeners = make(map[int]func(domain.Status))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onSessionChange applies a sign-in or sign-out under the same guard as
// every other operation. While one runs, the change is queued and end applies
// it, so a purchase in flight is credited to the identity it started with.
// Only the latest queued change is kept.
func (s *Store) onSessionChange(ctx context.Context, userID string, signedIn bool) {
	change := sessionChange{userID: userID, signedIn: signedIn}

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	if s.busy {
		s.pending = &change
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "session change queued behind running operation", "signed_in", signedIn)
		return
	}
	s.busy = true
	s.mu.Unlock()

	s.applySessionChange(ctx, change)
	s.end(ctx)
}

func (s *Store) applySessionChange(ctx context.Context, change sessionChange) {
	if !change.signedIn {
		if err := s.logout(ctx); err != nil {
			s.logger.WarnContext(ctx, "logout on sign-out failed", "error", err)
		}
		return
	}

	info, err := s.provider.Identify(ctx, change.userID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to identify signed-in user", "error", err)
		return
	}
	s.mu.Lock()
	s.appUserID = change.userID
	s.mu.Unlock()
	s.setStatus(ctx, domain.StatusFromCustomer(info, s.Status().Offering), "sign_in")
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return domain.ErrNotReady
	}
	if s.busy {
		return domain.ErrOperationInProgress
	}
	s.busy = true
	return nil
}

// end releases the guard after applying any session change that arrived
// while the operation ran. Queued changes run detached from the caller's
// cancellation.
func (s *Store) end(ctx context.Context) {
	for {
		s.mu.Lock()
		change := s.pending
		s.pending = nil
		if change == nil {
			s.busy = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.applySessionChange(context.WithoutCancel(ctx), *change)
	}
}

// setStatus replaces the status and fans the new value out to listeners.
func (s *Store) setStatus(ctx context.Context, status domain.Status, reason string) {
	s.mu.Lock()
	previous := s.status
	s.status = status
	listeners := make([]func(domain.Status), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}

	if previous.IsPremium == status.IsPremium {
		return
	}

	gauge := 0.0
	routingKey := domain.RoutingKeyPremiumRevoked
	if status.IsPremium {
		gauge = 1
		routingKey = domain.RoutingKeyPremiumActivated
	}
	s.metrics.Gauge(observability.MetricPremiumUsers, gauge,
		observability.T("platform", string(s.provider.Platform())))
	s.publish(ctx, routingKey, domain.PremiumChanged{
		AppUserID:          s.AppUserID(),
		Platform:           s.provider.Platform(),
		Reason:             reason,
		ActiveEntitlements: status.ActiveEntitlements,
	})
}

func (s *Store) publish(ctx context.Context, routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	aggregateID := s.AppUserID()
	if aggregateID == "" {
		aggregateID = "device"
	}
	event, err := shareddomain.NewEvent(aggregateID, domain.AggregateType, routingKey, payload)
	if err == nil {
		err = eventbus.PublishEvent(ctx, s.publisher, event)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "failed to publish entitlement event",
			"routing_key", routingKey,
			"error", err,
		)
	}
}
