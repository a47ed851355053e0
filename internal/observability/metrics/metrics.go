package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicetracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "servicetracker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	ticketTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicetracker_ticket_transitions_total",
		Help: "Count of service ticket status transitions",
	}, []string{"from", "to"})

	onboardingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicetracker_onboarding_attempts_total",
		Help: "Count of business onboarding attempts by result",
	}, []string{"result"})

	dashboardCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicetracker_dashboard_cache_lookups_total",
		Help: "Count of dashboard snapshot cache lookups by result",
	}, []string{"result"})

	identityVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicetracker_identity_verifications_total",
		Help: "Count of identity token verifications by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTicketTransition counts a status change on a service ticket.
func ObserveTicketTransition(from, to string) {
	ticketTransitions.WithLabelValues(from, to).Inc()
}

// ObserveOnboarding counts an onboarding attempt with a result label.
func ObserveOnboarding(result string) {
	onboardingAttempts.WithLabelValues(result).Inc()
}

// ObserveDashboardCache counts a dashboard snapshot cache hit or miss.
func ObserveDashboardCache(result string) {
	dashboardCacheLookups.WithLabelValues(result).Inc()
}

// ObserveIdentityVerification counts a token verification outcome.
func ObserveIdentityVerification(result string) {
	identityVerifications.WithLabelValues(result).Inc()
}
