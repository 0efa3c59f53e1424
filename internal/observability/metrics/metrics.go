package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pokedex"

// Metrics exposes application-level instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	resolverLookups *prometheus.CounterVec
	seedRuns        *prometheus.CounterVec
	seedRecords     prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the domain instruments on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolverLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_lookups_total",
			Help:      "Store lookups issued while resolving a pokemon term.",
		}, []string{"strategy", "outcome"}),
		seedRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_runs_total",
			Help:      "Seed executions by outcome.",
		}, []string{"outcome"}),
		seedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_records_total",
			Help:      "Records inserted by seed executions.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.resolverLookups, m.seedRuns, m.seedRecords, m.httpRequests, m.httpDuration} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
		}
	}
	return m, nil
}

// RecordResolverLookup counts one store lookup for strategy; found reports
// whether it matched.
func (m *Metrics) RecordResolverLookup(strategy string, found bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	m.resolverLookups.WithLabelValues(normalizeLabel(strategy), outcome).Inc()
}

// RecordSeedRun counts a seed execution and the records it inserted.
func (m *Metrics) RecordSeedRun(outcome string, inserted int) {
	if m == nil {
		return
	}
	m.seedRuns.WithLabelValues(normalizeLabel(outcome)).Inc()
	if inserted > 0 {
		m.seedRecords.Add(float64(inserted))
	}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := strings.ToUpper(c.Request.Method)
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
