// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cms",
		Subsystem: "access",
		Name:      "decisions_total",
		Help:      "Access decisions by route area and outcome.",
	}, []string{"area", "outcome"})

	AccessLookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cms",
		Subsystem: "access",
		Name:      "lookup_failures_total",
		Help:      "Identity or profile lookups that failed during an access decision.",
	}, []string{"stage", "policy"})

	AccessMissingProfiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cms",
		Subsystem: "access",
		Name:      "missing_profile_total",
		Help:      "Authenticated identities without a profile row.",
	}, []string{"area"})

	SessionRevocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cms",
		Subsystem: "session",
		Name:      "revocations_total",
		Help:      "Sessions force-logged-out by the status watcher.",
	}, []string{"view"})

	SessionWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cms",
		Subsystem: "session",
		Name:      "watchers",
		Help:      "Open session watch streams.",
	})

	ArticleReactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cms",
		Subsystem: "articles",
		Name:      "reactions_total",
		Help:      "Likes and dislikes recorded on articles.",
	}, []string{"kind"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cms",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one served request.
func ObserveRequest(method string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(MethodLabel(method), strconv.Itoa(status)).Observe(d.Seconds())
}

// MethodLabel maps non-standard request methods to "other" so clients cannot
// grow the label set.
func MethodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return method
	}
	return "other"
}
