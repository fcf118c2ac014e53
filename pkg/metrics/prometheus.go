package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pavlov"

// PrometheusMetrics implements CheckMetrics with client_golang
// collectors on a private registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	checks        *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	plans         *prometheus.CounterVec
	planDuration  *prometheus.HistogramVec
	runTotal      prometheus.Counter
	active        prometheus.Gauge
}

// NewPrometheusMetrics creates a PrometheusMetrics with all
// collectors registered.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check invocations by check name and status.",
		}, []string{"check", "status"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Check invocation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"check"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Finished plans by plan name and status.",
		}, []string{"plan", "status"}),
		planDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Plan run latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"plan"}),
		runTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_plans",
			Help:      "Plans currently running.",
		}),
	}

	m.registry.MustRegister(
		m.checks, m.checkDuration,
		m.plans, m.planDuration,
		m.runTotal, m.active,
	)
	return m
}

func status(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func (m *PrometheusMetrics) RecordCheck(check string, passed bool, duration time.Duration) {
	m.checks.WithLabelValues(check, status(passed)).Inc()
	m.checkDuration.WithLabelValues(check).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordPlan(plan string, passed bool, duration time.Duration) {
	m.plans.WithLabelValues(plan, status(passed)).Inc()
	m.planDuration.WithLabelValues(plan).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) IncrementRunTotal() {
	m.runTotal.Inc()
}

func (m *PrometheusMetrics) SetActivePlans(count int) {
	m.active.Set(float64(count))
}

// Registry returns the registry holding the collectors.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
