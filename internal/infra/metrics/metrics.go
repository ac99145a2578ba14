package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auraweb_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auraweb_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SubmissionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auraweb_submissions_created_total",
		Help: "Submissions accepted from the intake form.",
	})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auraweb_submission_status_changes_total",
		Help: "Submission status changes by target status.",
	}, []string{"status"})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auraweb_payments_recorded_total",
		Help: "Payment outcomes recorded, by payment status.",
	}, []string{"status"})

	Uploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auraweb_uploads_total",
		Help: "Files stored through the upload endpoints.",
	})
)
