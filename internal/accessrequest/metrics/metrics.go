package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for access request operations.
type Metrics struct {
	RequestsCreated   *prometheus.CounterVec
	RequestsApproved  *prometheus.CounterVec
	RequestsRejected  *prometheus.CounterVec
	TransitionsDenied *prometheus.CounterVec
	PendingRequests   prometheus.Gauge
	OperationLatency  *prometheus.HistogramVec
	ApprovedFields    prometheus.Histogram
}

// New registers and returns access request metrics collectors.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_access_requests_created_total",
			Help: "Total number of access requests created, labeled by purpose",
		}, []string{"purpose"}),
		RequestsApproved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_access_requests_approved_total",
			Help: "Total number of access requests approved, labeled by purpose",
		}, []string{"purpose"}),
		RequestsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_access_requests_rejected_total",
			Help: "Total number of access requests rejected, labeled by purpose",
		}, []string{"purpose"}),
		TransitionsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_access_request_transitions_denied_total",
			Help: "Total number of denied lifecycle transitions, labeled by reason",
		}, []string{"reason"}),
		PendingRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credgate_access_requests_pending",
			Help: "Current number of pending access requests",
		}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credgate_access_request_operation_latency_seconds",
			Help:    "Latency of access request operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ApprovedFields: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credgate_access_request_approved_fields",
			Help:    "Distribution of field counts released per approval",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12},
		}),
	}
}

func (m *Metrics) IncrementRequestsCreated(purpose string) {
	m.RequestsCreated.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementRequestsApproved(purpose string) {
	m.RequestsApproved.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementRequestsRejected(purpose string) {
	m.RequestsRejected.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementTransitionsDenied(reason string) {
	m.TransitionsDenied.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementPendingRequests() {
	m.PendingRequests.Inc()
}

func (m *Metrics) DecrementPendingRequests() {
	m.PendingRequests.Dec()
}

// ObserveOperationLatency records the latency of a lifecycle operation.
func (m *Metrics) ObserveOperationLatency(operation string, durationSeconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}

// ObserveApprovedFields records the number of fields released by an approval.
func (m *Metrics) ObserveApprovedFields(count float64) {
	m.ApprovedFields.Observe(count)
}
