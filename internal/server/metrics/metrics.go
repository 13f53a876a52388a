// Package metrics defines the Prometheus instruments exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewdesk_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewdesk_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crewdesk_messages_posted_total",
			Help: "Total chat messages posted",
		},
	)

	TimeOffRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewdesk_timeoff_requests_total",
			Help: "Total time-off request transitions",
		},
		[]string{"status"},
	)

	PunchesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewdesk_punches_recorded_total",
			Help: "Total shift clock punches",
		},
		[]string{"kind"}, // "in" or "out"
	)

	ChecklistToggles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crewdesk_checklist_toggles_total",
			Help: "Total yearbook checklist state changes",
		},
	)
)
