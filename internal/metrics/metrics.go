package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every ClearWay collector. It is served by `clearway serve`.
var Registry = prometheus.NewRegistry()

var (
	CheckIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearway",
			Name:      "checkins_total",
			Help:      "Completed daily check-ins",
		},
		[]string{"drank"},
	)

	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearway",
			Name:      "persist_failures_total",
			Help:      "Check-in side effects that failed to persist",
		},
		[]string{"effect"},
	)

	DaysClear = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clearway",
			Name:      "days_clear",
			Help:      "Current run of consecutive no-drink check-ins",
		},
	)

	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearway",
			Name:      "chat_requests_total",
			Help:      "Counselor chat completions by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearway",
			Name:      "http_requests_total",
			Help:      "Local API requests",
		},
		[]string{"route", "method", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clearway",
			Name:      "http_request_duration_seconds",
			Help:      "Local API request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clearway",
			Name:      "http_rate_limited_total",
			Help:      "Local API requests rejected by the rate limiter",
		},
	)
)

func init() {
	Registry.MustRegister(
		CheckIns,
		PersistFailures,
		DaysClear,
		ChatRequests,
		HTTPRequests,
		HTTPDuration,
		RateLimited,
		collectors.NewGoCollector(),
	)
}
