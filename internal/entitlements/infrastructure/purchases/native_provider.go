package purchases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

// Backend error codes.
const (
	CodeUserCancelled      = 1
	CodeStoreProblem       = 2
	CodePurchaseNotAllowed = 3
	CodePurchaseInvalid    = 4
	CodeProductUnavailable = 5
	CodeInvalidReceipt     = 8
	CodeNetwork            = 10
)

// KindForCode maps a backend error code to an ErrorKind.
func KindForCode(code int) domain.ErrorKind {
	switch code {
	case CodeUserCancelled:
		return domain.KindUserCancelled
	case CodePurchaseNotAllowed:
		return domain.KindNotAllowed
	case CodePurchaseInvalid, CodeInvalidReceipt:
		return domain.KindInvalid
	case CodeProductUnavailable:
		return domain.KindUnavailable
	case CodeNetwork:
		return domain.KindNetwork
	default:
		return domain.KindUnknown
	}
}

// IdentityStore persists the anonymous app user id so separate runs act as
// the same anonymous customer until someone signs in.
type IdentityStore interface {
	LoadAnonymousID(ctx context.Context) (string, error)
	SaveAnonymousID(ctx context.Context, id string) error
	ClearAnonymousID(ctx context.Context) error
}

// NativeConfig configures the native purchase backend client.
type NativeConfig struct {
	Platform     domain.Platform
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	OfferingID   string
	Timeout      time.Duration

	// FailureThreshold is the number of consecutive transport failures
	// that opens the circuit.
	FailureThreshold uint32
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration

	// RequestsPerSecond throttles calls to the backend. Zero disables it.
	RequestsPerSecond float64
	Burst             int

	// Identities keeps the anonymous id between runs. Optional.
	Identities IdentityStore

	// HTTPClient is the base transport. Defaults to a client with Timeout.
	HTTPClient *http.Client
}

// NativeProvider talks to the purchase backend on ios and android.
type NativeProvider struct {
	platform   domain.Platform
	baseURL    string
	offeringID string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
	limiter    *rate.Limiter
	identities IdentityStore
	logger     *slog.Logger

	mu        sync.Mutex
	appUserID string
}

var _ domain.PurchaseProvider = (*NativeProvider)(nil)

// NewNativeProvider creates a backend client. When ClientID is set, every
// request carries a client-credentials bearer token.
func NewNativeProvider(cfg NativeConfig, logger *slog.Logger) (*NativeProvider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("purchases API URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout}
	}

	client := base
	if cfg.ClientID != "" {
		oauthCfg := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauthCfg.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	p := &NativeProvider{
		platform:   cfg.Platform,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		offeringID: cfg.OfferingID,
		client:     client,
		identities: cfg.Identities,
		logger:     logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "purchases-" + string(cfg.Platform),
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Only transport failures count against the circuit. A declined or
		// cancelled purchase means the backend is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil || domain.KindOf(err) != domain.KindNetwork
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return p, nil
}

func (p *NativeProvider) Platform() domain.Platform {
	return p.platform
}

// BreakerState exposes the circuit state for health checks.
func (p *NativeProvider) BreakerState() string {
	return p.breaker.State().String()
}

// AppUserID returns the identity requests are issued for. Before Identify
// an anonymous id is loaded from the identity store or generated and saved.
func (p *NativeProvider) AppUserID() string {
	return p.currentID(context.Background())
}

func (p *NativeProvider) currentID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id := p.knownID(ctx); id != "" {
		return id
	}
	p.appUserID = anonymousID()
	if p.identities != nil {
		if err := p.identities.SaveAnonymousID(ctx, p.appUserID); err != nil {
			p.logger.WarnContext(ctx, "failed to persist anonymous id", "error", err)
		}
	}
	return p.appUserID
}

// knownID returns the in-memory or persisted id without generating one.
// Callers hold mu.
func (p *NativeProvider) knownID(ctx context.Context) string {
	if p.appUserID != "" || p.identities == nil {
		return p.appUserID
	}
	id, err := p.identities.LoadAnonymousID(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to load anonymous id", "error", err)
		return ""
	}
	p.appUserID = id
	return id
}

// Identify switches to appUserID. Only an anonymous previous id is sent for
// aliasing; a previously identified user is never merged into the next one.
func (p *NativeProvider) Identify(ctx context.Context, appUserID string) (domain.CustomerInfo, error) {
	if appUserID == "" {
		return domain.CustomerInfo{}, domain.Purchasef(domain.KindInvalid, "app user id is required")
	}

	p.mu.Lock()
	previous := p.knownID(ctx)
	p.mu.Unlock()

	body := map[string]string{"app_user_id": appUserID}
	aliased := IsAnonymousID(previous) && previous != appUserID
	if aliased {
		body["previous_app_user_id"] = previous
	}

	var info domain.CustomerInfo
	if err := p.do(ctx, http.MethodPost, "/v1/subscribers/identify", body, &info); err != nil {
		return domain.CustomerInfo{}, err
	}

	p.mu.Lock()
	p.appUserID = appUserID
	p.mu.Unlock()

	if aliased && p.identities != nil {
		if err := p.identities.ClearAnonymousID(ctx); err != nil {
			p.logger.WarnContext(ctx, "failed to clear anonymous id", "error", err)
		}
	}
	return info, nil
}

func (p *NativeProvider) CurrentCustomer(ctx context.Context) (domain.CustomerInfo, error) {
	var info domain.CustomerInfo
	path := "/v1/subscribers/" + url.PathEscape(p.currentID(ctx))
	if err := p.do(ctx, http.MethodGet, path, nil, &info); err != nil {
		return domain.CustomerInfo{}, err
	}
	return info, nil
}

func (p *NativeProvider) Offering(ctx context.Context) (domain.Offering, error) {
	id := p.offeringID
	if id == "" {
		id = "current"
	}
	var offering domain.Offering
	path := "/v1/subscribers/" + url.PathEscape(p.currentID(ctx)) + "/offerings/" + url.PathEscape(id)
	if err := p.do(ctx, http.MethodGet, path, nil, &offering); err != nil {
		return domain.Offering{}, err
	}
	return offering, nil
}

func (p *NativeProvider) Purchase(ctx context.Context, pkg domain.Package) (domain.CustomerInfo, error) {
	var info domain.CustomerInfo
	path := "/v1/subscribers/" + url.PathEscape(p.currentID(ctx)) + "/purchases"
	body := map[string]string{
		"package_id": pkg.ID,
		"product_id": pkg.ProductID,
		"platform":   string(p.platform),
	}
	if err := p.do(ctx, http.MethodPost, path, body, &info); err != nil {
		return domain.CustomerInfo{}, err
	}
	return info, nil
}

func (p *NativeProvider) Restore(ctx context.Context) (domain.CustomerInfo, error) {
	var info domain.CustomerInfo
	path := "/v1/subscribers/" + url.PathEscape(p.currentID(ctx)) + "/restore"
	if err := p.do(ctx, http.MethodPost, path, map[string]string{"platform": string(p.platform)}, &info); err != nil {
		return domain.CustomerInfo{}, err
	}
	return info, nil
}

// Reset disassociates the identity. The next request runs as a fresh
// anonymous user.
func (p *NativeProvider) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appUserID = ""
	if p.identities != nil {
		if err := p.identities.ClearAnonymousID(ctx); err != nil {
			return fmt.Errorf("clear anonymous id: %w", err)
		}
	}
	return nil
}

type backendError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *NativeProvider) do(ctx context.Context, method, path string, in, out any) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return domain.NewPurchaseError(domain.KindNetwork, fmt.Errorf("rate limit: %w", err))
		}
	}
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.roundTrip(ctx, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.NewPurchaseError(domain.KindNetwork, err)
	}
	return err
}

func (p *NativeProvider) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return domain.NewPurchaseError(domain.KindUnknown, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return domain.NewPurchaseError(domain.KindUnknown, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Platform", string(p.platform))

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.NewPurchaseError(domain.KindNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewPurchaseError(domain.KindNetwork, err)
	}

	if resp.StatusCode >= 300 {
		var be backendError
		if jsonErr := json.Unmarshal(data, &be); jsonErr != nil || be.Code == 0 {
			if resp.StatusCode >= 500 {
				return domain.Purchasef(domain.KindNetwork, "backend returned %d", resp.StatusCode)
			}
			return domain.Purchasef(domain.KindUnknown, "backend returned %d", resp.StatusCode)
		}
		p.logger.Debug("purchase backend error",
			"path", path,
			"status", resp.StatusCode,
			"code", be.Code,
		)
		return domain.Purchasef(KindForCode(be.Code), "code %d: %s", be.Code, be.Message)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewPurchaseError(domain.KindUnknown, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

const anonymousPrefix = "$anon:"

func anonymousID() string {
	return anonymousPrefix + uuid.NewString()
}

// IsAnonymousID reports whether id was generated for an anonymous customer.
func IsAnonymousID(id string) bool {
	return strings.HasPrefix(id, anonymousPrefix)
}
