package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricPurchaseFailed, 1, T("kind", "network"), T("package", "monthly"))
	m.Counter(MetricPurchaseFailed, 2, T("package", "monthly"), T("kind", "network"))
	m.Gauge(MetricPremiumUsers, 1)

	assert.Equal(t, int64(3), m.GetCounter(MetricPurchaseFailed, T("kind", "network"), T("package", "monthly")))
	assert.Equal(t, int64(0), m.GetCounter(MetricPurchaseFailed))
	assert.Equal(t, float64(1), m.GetGauge(MetricPremiumUsers))
}

func TestHealthRegistry(t *testing.T) {
	registry := NewHealthRegistry()
	registry.Register("flags", PingHealthChecker("flags", HealthStatusUnhealthy, func(ctx context.Context) error {
		return nil
	}))
	registry.Register("events", PingHealthChecker("events", HealthStatusDegraded, func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	results := registry.Check(context.Background())

	assert.Equal(t, []string{"events", "flags"}, registry.Names())
	assert.Equal(t, HealthStatusHealthy, results["flags"].Status)
	assert.Equal(t, HealthStatusDegraded, results["events"].Status)
	assert.Contains(t, results["events"].Message, "connection refused")
	assert.Equal(t, HealthStatusDegraded, Overall(results))
}

func TestOverall_Unhealthy(t *testing.T) {
	results := map[string]HealthCheckResult{
		"a": {Status: HealthStatusDegraded},
		"b": {Status: HealthStatusUnhealthy},
	}
	assert.Equal(t, HealthStatusUnhealthy, Overall(results))
	assert.Equal(t, HealthStatusHealthy, Overall(nil))
}
