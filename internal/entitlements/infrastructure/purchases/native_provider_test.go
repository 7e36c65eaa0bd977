package purchases

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newNative(t *testing.T, handler http.HandlerFunc, mutate ...func(*NativeConfig)) *NativeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := NativeConfig{
		Platform:         domain.PlatformIOS,
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	p, err := NewNativeProvider(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestKindForCode(t *testing.T) {
	tests := []struct {
		code int
		want domain.ErrorKind
	}{
		{CodeUserCancelled, domain.KindUserCancelled},
		{CodePurchaseNotAllowed, domain.KindNotAllowed},
		{CodePurchaseInvalid, domain.KindInvalid},
		{CodeInvalidReceipt, domain.KindInvalid},
		{CodeProductUnavailable, domain.KindUnavailable},
		{CodeNetwork, domain.KindNetwork},
		{CodeStoreProblem, domain.KindUnknown},
		{42, domain.KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForCode(tt.code), "code %d", tt.code)
	}
}

func TestNewNativeProvider_RequiresURL(t *testing.T) {
	_, err := NewNativeProvider(NativeConfig{}, nil)
	assert.Error(t, err)
}

func TestNativeProvider_PurchaseSuccess(t *testing.T) {
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/purchases"))
		assert.Equal(t, "ios", r.Header.Get("X-Platform"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "$rc_monthly", body["package_id"])

		writeJSON(w, http.StatusOK, domain.CustomerInfo{
			AppUserID:          "user-1",
			ActiveEntitlements: []domain.EntitlementID{domain.PremiumEntitlement},
		})
	})

	info, err := p.Purchase(context.Background(), domain.Package{ID: "$rc_monthly", Type: domain.PackageMonthly})
	require.NoError(t, err)
	assert.Equal(t, []domain.EntitlementID{domain.PremiumEntitlement}, info.ActiveEntitlements)
}

func TestNativeProvider_BackendErrorCodes(t *testing.T) {
	for code, want := range map[int]error{
		CodeUserCancelled:      domain.ErrUserCancelled,
		CodePurchaseNotAllowed: domain.ErrPurchaseNotAllowed,
		CodePurchaseInvalid:    domain.ErrPurchaseInvalid,
		CodeProductUnavailable: domain.ErrProductUnavailable,
		CodeNetwork:            domain.ErrNetwork,
		99:                     domain.ErrUnknown,
	} {
		code := code
		p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, backendError{Code: code, Message: "nope"})
		})

		_, err := p.Purchase(context.Background(), domain.Package{ID: "x"})
		assert.ErrorIs(t, err, want, "code %d", code)
	}
}

func TestNativeProvider_ServerErrorIsNetwork(t *testing.T) {
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.Restore(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestNativeProvider_BreakerOpensOnTransportFailures(t *testing.T) {
	var calls atomic.Int32
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.CurrentCustomer(ctx)
		require.ErrorIs(t, err, domain.ErrNetwork)
	}
	assert.Equal(t, "open", p.BreakerState())

	_, err := p.CurrentCustomer(ctx)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(2), calls.Load(), "open circuit must not reach the backend")
}

func TestNativeProvider_DeclinesDoNotTripBreaker(t *testing.T) {
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, backendError{Code: CodeUserCancelled})
	})

	for i := 0; i < 5; i++ {
		_, err := p.Purchase(context.Background(), domain.Package{ID: "x"})
		require.ErrorIs(t, err, domain.ErrUserCancelled)
	}
	assert.Equal(t, "closed", p.BreakerState())
}

func TestNativeProvider_IdentifyAndReset(t *testing.T) {
	var lastPath atomic.Value
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		lastPath.Store(r.URL.Path)
		writeJSON(w, http.StatusOK, domain.CustomerInfo{AppUserID: "user-7"})
	})
	ctx := context.Background()

	anon := p.AppUserID()
	assert.True(t, strings.HasPrefix(anon, "$anon:"))

	_, err := p.Identify(ctx, "user-7")
	require.NoError(t, err)
	assert.Equal(t, "user-7", p.AppUserID())

	_, err = p.CurrentCustomer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/v1/subscribers/user-7", lastPath.Load())

	require.NoError(t, p.Reset(ctx))
	require.NoError(t, p.Reset(ctx))
	assert.NotEqual(t, "user-7", p.AppUserID())
}

func TestNativeProvider_Offering(t *testing.T) {
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/offerings/spring"))
		writeJSON(w, http.StatusOK, domain.Offering{
			ID:       "spring",
			Packages: []domain.Package{{ID: "$rc_annual", Type: domain.PackageAnnual}},
		})
	}, func(c *NativeConfig) { c.OfferingID = "spring" })

	offering, err := p.Offering(context.Background())
	require.NoError(t, err)
	_, ok := offering.Package(domain.PackageAnnual)
	assert.True(t, ok)
	_, ok = offering.Package(domain.PackageMonthly)
	assert.False(t, ok)
}

func TestNativeProvider_ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "secret-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/subscribers/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.CustomerInfo{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewNativeProvider(NativeConfig{
		Platform:     domain.PlatformAndroid,
		BaseURL:      srv.URL,
		ClientID:     "coachly",
		ClientSecret: "s3cret",
		TokenURL:     srv.URL + "/oauth/token",
	}, nil)
	require.NoError(t, err)

	_, err = p.CurrentCustomer(context.Background())
	require.NoError(t, err)
}

func TestNativeProvider_RateLimit(t *testing.T) {
	var calls atomic.Int32
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, domain.CustomerInfo{})
	}, func(cfg *NativeConfig) {
		cfg.RequestsPerSecond = 0.01
		cfg.Burst = 1
	})

	_, err := p.CurrentCustomer(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.CurrentCustomer(ctx)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "closed", p.BreakerState())
}

type memoryIdentities struct {
	mu sync.Mutex
	id string
}

func (m *memoryIdentities) LoadAnonymousID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *memoryIdentities) SaveAnonymousID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *memoryIdentities) ClearAnonymousID(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = ""
	return nil
}

func TestNativeProvider_AnonymousIDPersistsAcrossRuns(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		writeJSON(w, http.StatusOK, domain.CustomerInfo{})
	}
	identities := &memoryIdentities{}
	withStore := func(c *NativeConfig) { c.Identities = identities }
	ctx := context.Background()

	first := newNative(t, handler, withStore)
	_, err := first.Purchase(ctx, domain.Package{ID: "$rc_monthly"})
	require.NoError(t, err)
	anon := first.AppUserID()
	require.True(t, IsAnonymousID(anon))
	assert.Equal(t, anon, identities.id)

	second := newNative(t, handler, withStore)
	_, err = second.CurrentCustomer(ctx)
	require.NoError(t, err)
	assert.Equal(t, anon, second.AppUserID())

	mu.Lock()
	assert.Equal(t, "/v1/subscribers/"+anon, paths[len(paths)-1])
	mu.Unlock()

	require.NoError(t, second.Reset(ctx))
	assert.Empty(t, identities.id)
	assert.NotEqual(t, anon, second.AppUserID())
}

func TestNativeProvider_IdentifyAliasesOnlyAnonymousIDs(t *testing.T) {
	var bodies []map[string]string
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, domain.CustomerInfo{})
	})
	ctx := context.Background()

	anon := p.AppUserID()
	_, err := p.Identify(ctx, "alice")
	require.NoError(t, err)
	_, err = p.Identify(ctx, "bob")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, map[string]string{"app_user_id": "alice", "previous_app_user_id": anon}, bodies[0])
	assert.Equal(t, map[string]string{"app_user_id": "bob"}, bodies[1])
}

func TestNativeProvider_IdentifyConsumesStoredAnonymousID(t *testing.T) {
	identities := &memoryIdentities{id: "$anon:stored"}
	var previous string
	p := newNative(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		previous = body["previous_app_user_id"]
		writeJSON(w, http.StatusOK, domain.CustomerInfo{})
	}, func(c *NativeConfig) { c.Identities = identities })

	_, err := p.Identify(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "$anon:stored", previous)
	assert.Empty(t, identities.id)
	assert.Equal(t, "alice", p.AppUserID())
}
