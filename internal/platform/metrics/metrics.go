package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the gateway. Every observer is
// nil-safe so components can run without metrics in tests.
type Metrics struct {
	CacheFailures     *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	BackendLatency    *prometheus.HistogramVec
	BackendCircuit    prometheus.Gauge
	SessionsOpened    *prometheus.CounterVec
	SessionsExpired   prometheus.Counter
	HierarchyFetches  *prometheus.CounterVec
	OnboardingSteps   *prometheus.CounterVec
	OnboardingResults *prometheus.CounterVec
	SubmitLatency     prometheus.Histogram
	RateLimited       *prometheus.CounterVec
}

// New creates and registers all collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_ttlcache_failures_total",
			Help: "TTL cache operations that degraded to a miss or no-op",
		}, []string{"op"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_ttlcache_lookups_total",
			Help: "TTL cache reads by result",
		}, []string{"result"}), // hit, miss, expired
		BackendLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kayit_backend_request_duration_seconds",
			Help:    "Duration of ERP backend calls by operation and outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op", "outcome"}),
		BackendCircuit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kayit_backend_circuit_open",
			Help: "1 while the backend circuit breaker is open",
		}),
		SessionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_sessions_opened_total",
			Help: "Registration sessions opened by resulting status and source",
		}, []string{"status", "source"}), // source: cache, backend
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "kayit_sessions_expired_total",
			Help: "Registration sessions that reached the end of their window",
		}),
		HierarchyFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_location_hierarchy_fetches_total",
			Help: "Location hierarchy backend fetches by outcome",
		}, []string{"outcome"}),
		OnboardingSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_onboarding_steps_total",
			Help: "Onboarding creation steps by step and outcome",
		}, []string{"step", "outcome"}),
		OnboardingResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_onboarding_results_total",
			Help: "Onboarding submissions by aggregate status",
		}, []string{"status"}),
		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kayit_onboarding_submit_duration_seconds",
			Help:    "Duration of a full onboarding submission",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kayit_ratelimit_rejections_total",
			Help: "Requests refused by the per-client rate limiter",
		}, []string{"class"}),
	}
}

func (m *Metrics) IncCacheFailure(op string) {
	if m != nil {
		m.CacheFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveBackend records one backend call. Call with time.Now() at the start
// of the operation.
func (m *Metrics) ObserveBackend(op, outcome string, start time.Time) {
	if m != nil {
		m.BackendLatency.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BackendCircuit.Set(1)
		return
	}
	m.BackendCircuit.Set(0)
}

func (m *Metrics) IncSessionOpened(status, source string) {
	if m != nil {
		m.SessionsOpened.WithLabelValues(status, source).Inc()
	}
}

func (m *Metrics) IncSessionExpired() {
	if m != nil {
		m.SessionsExpired.Inc()
	}
}

func (m *Metrics) IncHierarchyFetch(outcome string) {
	if m != nil {
		m.HierarchyFetches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncOnboardingStep(step string, succeeded bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	m.OnboardingSteps.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) IncOnboardingResult(status string) {
	if m != nil {
		m.OnboardingResults.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveSubmit(start time.Time) {
	if m != nil {
		m.SubmitLatency.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncRateLimited(class string) {
	if m != nil {
		m.RateLimited.WithLabelValues(class).Inc()
	}
}
