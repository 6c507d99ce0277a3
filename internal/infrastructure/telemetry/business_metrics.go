package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BusinessMetrics holds the prometheus collectors for admission, verification
// and escrow activity. A nil *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	registry *prometheus.Registry

	admissionOutcomes   *prometheus.CounterVec
	admissionDuration   prometheus.Histogram
	gateOverrides       prometheus.Counter
	verificationReviews *prometheus.CounterVec
	escrowTransitions   *prometheus.CounterVec
	trackingRequests    *prometheus.CounterVec
	outboxDispatched    *prometheus.CounterVec
	eventsHandled       *prometheus.CounterVec
}

// NewBusinessMetrics creates the collectors and registers them on registry.
// A nil registry gets a fresh one, which Registry() exposes for /metrics.
func NewBusinessMetrics(registry *prometheus.Registry) *BusinessMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	bm := &BusinessMetrics{
		registry: registry,
		admissionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_admission_outcomes_total",
			Help: "Transaction admission attempts by outcome.",
		}, []string{"outcome"}),
		admissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradewave_admission_duration_seconds",
			Help:    "Time spent deciding and committing a transaction admission.",
			Buckets: prometheus.DefBuckets,
		}),
		gateOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradewave_admission_gate_overrides_total",
			Help: "Admissions that bypassed the good-standing gate by admin override.",
		}),
		verificationReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_verification_reviews_total",
			Help: "Verification review actions applied.",
		}, []string{"action"}),
		escrowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_escrow_transitions_total",
			Help: "Escrow status changes by resulting status.",
		}, []string{"status"}),
		trackingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_tracking_requests_total",
			Help: "Shipment tracking lookups by result.",
		}, []string{"result"}),
		outboxDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_outbox_dispatched_total",
			Help: "Outbox entries processed by result.",
		}, []string{"result"}),
		eventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewave_events_handled_total",
			Help: "Event deliveries seen by deduplicating handlers, by handler and result.",
		}, []string{"handler", "result"}),
	}
	registry.MustRegister(
		bm.admissionOutcomes,
		bm.admissionDuration,
		bm.gateOverrides,
		bm.verificationReviews,
		bm.escrowTransitions,
		bm.trackingRequests,
		bm.outboxDispatched,
		bm.eventsHandled,
	)
	return bm
}

// Registry returns the registry the collectors are registered on
func (bm *BusinessMetrics) Registry() *prometheus.Registry {
	if bm == nil {
		return nil
	}
	return bm.registry
}

// RecordAdmission counts one admission attempt
func (bm *BusinessMetrics) RecordAdmission(outcome string, seconds float64, overridden bool) {
	if bm == nil {
		return
	}
	bm.admissionOutcomes.WithLabelValues(labelOrUnknown(outcome)).Inc()
	bm.admissionDuration.Observe(seconds)
	if overridden {
		bm.gateOverrides.Inc()
	}
}

// RecordVerificationReview counts an applied review action
func (bm *BusinessMetrics) RecordVerificationReview(action string) {
	if bm == nil {
		return
	}
	bm.verificationReviews.WithLabelValues(labelOrUnknown(action)).Inc()
}

// RecordEscrowTransition counts an escrow reaching status
func (bm *BusinessMetrics) RecordEscrowTransition(status string) {
	if bm == nil {
		return
	}
	bm.escrowTransitions.WithLabelValues(labelOrUnknown(status)).Inc()
}

// RecordTrackingRequest counts a tracking lookup; result is hit or miss at the cache, ok or error at the caller
func (bm *BusinessMetrics) RecordTrackingRequest(result string) {
	if bm == nil {
		return
	}
	bm.trackingRequests.WithLabelValues(labelOrUnknown(result)).Inc()
}

// RecordOutboxDispatch counts a processed outbox entry; result is sent, failed or dead
func (bm *BusinessMetrics) RecordOutboxDispatch(result string) {
	if bm == nil {
		return
	}
	bm.outboxDispatched.WithLabelValues(labelOrUnknown(result)).Inc()
}

// RecordEventHandled counts one delivery; result is processed, duplicate or failed
func (bm *BusinessMetrics) RecordEventHandled(handler, result string) {
	if bm == nil {
		return
	}
	bm.eventsHandled.WithLabelValues(labelOrUnknown(handler), labelOrUnknown(result)).Inc()
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
