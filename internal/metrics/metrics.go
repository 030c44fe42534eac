package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "upstream_requests_total",
		Help:      "Provider API calls by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|http_error|transport_error|decode_error|unauthenticated

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "upstream_request_duration_seconds",
		Help:      "Provider API call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	businessesDiscovered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Name:      "businesses_discovered",
		Help:      "Locations returned by the last discovery walk",
	})

	accountWalkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "account_location_failures_total",
		Help:      "Accounts whose location listing failed during discovery",
	})

	consentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "consent_outcomes_total",
		Help:      "Interactive consent attempts by outcome",
	}, []string{"outcome"}) // outcome=granted|declined|error|abandoned

	sdkReady = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Name:      "identity_sdk_ready",
		Help:      "Whether the identity provider handle is initialized (1) or not (0)",
	})
)

// Upstream call outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeHTTPError       = "http_error"
	OutcomeTransportError  = "transport_error"
	OutcomeDecodeError     = "decode_error"
	OutcomeUnauthenticated = "unauthenticated"
)

// Consent outcomes.
const (
	ConsentGranted   = "granted"
	ConsentDeclined  = "declined"
	ConsentError     = "error"
	ConsentAbandoned = "abandoned"
)

func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeUnauthenticated {
		upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

func SetBusinessesDiscovered(n int) {
	businessesDiscovered.Set(float64(n))
}

func IncAccountWalkFailure() {
	accountWalkFailures.Inc()
}

func ObserveConsent(outcome string) {
	consentOutcomes.WithLabelValues(outcome).Inc()
}

func SetSDKReady(ready bool) {
	if ready {
		sdkReady.Set(1)
		return
	}
	sdkReady.Set(0)
}
