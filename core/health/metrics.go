package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/mikempw/failover/core/status"
)

// Metrics polls a Prometheus text-exposition endpoint and evaluates
// whether a named monotonic counter is still advancing, per SPEC_FULL.md
// §4.2. last_value is intentionally NOT overwritten on a stale
// observation, so a counter that resets downward keeps counting as stale
// until it climbs past the last known-good high-water mark. A failed fetch
// or an absent metric yields Unknown and leaves staleCount unchanged.
type Metrics struct {
	URL         string
	MetricName  string
	StaleLimit  int
	Timeout     time.Duration

	client *http.Client

	mu         sync.Mutex
	lastValue  float64
	haveValue  bool
	staleCount int
}

func NewMetrics(url, metricName string, staleLimit int, timeout time.Duration) *Metrics {
	return &Metrics{
		URL:        url,
		MetricName: metricName,
		StaleLimit: staleLimit,
		Timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
	}
}

func (m *Metrics) Check(ctx context.Context) status.T {
	value, ok := m.fetch(ctx)
	if !ok {
		return status.Unknown
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.haveValue {
		// First observation: give the target one interval to warm up.
		m.lastValue = value
		m.haveValue = true
		m.staleCount = 0
		return status.Healthy
	}

	if value > m.lastValue {
		m.lastValue = value
		m.staleCount = 0
		return status.Healthy
	}

	m.staleCount++
	if m.staleCount >= m.StaleLimit {
		return status.Unhealthy
	}
	return status.Healthy
}

func (m *Metrics) fetch(ctx context.Context) (float64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return 0, false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return 0, false
	}
	fam, ok := families[m.MetricName]
	if !ok {
		return 0, false
	}

	// Sum across every label combination of the family, matching the
	// original's parse_metric_value.
	var total float64
	var found bool
	for _, metric := range fam.GetMetric() {
		if v, ok := metricValue(fam.GetType(), metric); ok {
			total += v
			found = true
		}
	}
	return total, found
}

func metricValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		if m.Counter != nil {
			return m.Counter.GetValue(), true
		}
	case dto.MetricType_GAUGE:
		if m.Gauge != nil {
			return m.Gauge.GetValue(), true
		}
	case dto.MetricType_UNTYPED:
		if m.Untyped != nil {
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}
