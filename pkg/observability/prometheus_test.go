package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *PrometheusMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusMetrics_Counter(t *testing.T) {
	m := NewPrometheusMetrics("coachly")

	m.Counter(MetricPurchaseAttempt, 1, T("platform", "web"), T("package", "monthly"))
	m.Counter(MetricPurchaseAttempt, 2, T("package", "monthly"), T("platform", "web"))
	m.Counter(MetricPurchaseAttempt, -1, T("platform", "web"), T("package", "monthly"))

	body := scrape(t, m)
	assert.Contains(t, body, `coachly_purchases_attempt_total{package="monthly",platform="web"} 3`)
}

func TestPrometheusMetrics_GaugeKeepsFirstLabelSet(t *testing.T) {
	m := NewPrometheusMetrics("coachly")

	m.Gauge(MetricPremiumUsers, 1, T("platform", "ios"))
	m.Gauge(MetricPremiumUsers, 0, T("platform", "android"), T("extra", "dropped"))

	body := scrape(t, m)
	assert.Contains(t, body, `coachly_entitlements_premium{platform="ios"} 1`)
	assert.Contains(t, body, `coachly_entitlements_premium{platform="android"} 0`)
	assert.NotContains(t, body, "dropped")
}

func TestMulti(t *testing.T) {
	a := NewInMemoryMetrics()
	b := NewInMemoryMetrics()
	m := Multi(a, nil, b)
	require.Len(t, m, 2)

	m.Counter("x", 2)
	m.Gauge("y", 1.5)
	assert.Equal(t, int64(2), a.GetCounter("x"))
	assert.Equal(t, int64(2), b.GetCounter("x"))
	assert.Equal(t, 1.5, b.GetGauge("y"))
}
