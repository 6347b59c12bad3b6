package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the search pipeline collectors.
type Metrics struct {
	searches        *prometheus.CounterVec
	offersSkipped   *prometheus.CounterVec
	offersReturned  prometheus.Histogram
	upstreamLatency *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flightoffers",
			Name:      "searches_total",
			Help:      "Completed searches by ranking policy and cache outcome.",
		}, []string{"sort_by", "cache"}),
		offersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flightoffers",
			Name:      "offers_skipped_total",
			Help:      "Raw offers dropped as malformed during normalization.",
		}, []string{"provider"}),
		offersReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flightoffers",
			Name:      "offers_returned",
			Help:      "Offers returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 250},
		}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flightoffers",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream fetch latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
	}

	reg.MustRegister(m.searches, m.offersSkipped, m.offersReturned, m.upstreamLatency)
	return m
}

func (m *Metrics) ObserveSearch(sortBy string, cacheHit bool, returned int) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	m.searches.WithLabelValues(sortBy, cache).Inc()
	m.offersReturned.Observe(float64(returned))
}

func (m *Metrics) AddSkipped(provider string, n int) {
	if n <= 0 {
		return
	}
	m.offersSkipped.WithLabelValues(provider).Add(float64(n))
}

func (m *Metrics) ObserveUpstream(provider string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamLatency.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

// RegisterClientBuckets exposes the number of live per-client rate limit
// buckets, read from count at scrape time.
func RegisterClientBuckets(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "flightoffers",
		Name:      "client_rate_limit_buckets",
		Help:      "Per-client rate limit buckets currently held.",
	}, func() float64 { return float64(count()) }))
}
