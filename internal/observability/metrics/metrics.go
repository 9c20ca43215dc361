package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the call flow. All
// methods are nil-safe so wiring metrics stays optional in tests.
type DialogueMetrics struct {
	callsStarted  prometheus.Counter
	turnsTotal    *prometheus.CounterVec
	pricingTotal  *prometheus.CounterVec
	bookingTotal  *prometheus.CounterVec
	currencyTrips prometheus.Counter
	postcodeFalls prometheus.Counter
	turnLatency   prometheus.Histogram
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		callsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "calls_started_total",
			Help:      "Total calls that opened a session",
		}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed caller turns",
		}, []string{"stage"}),
		pricingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "pricing_submissions_total",
			Help:      "Pricing webhook submissions by outcome",
		}, []string{"outcome"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "booking_submissions_total",
			Help:      "Booking webhook submissions by outcome",
		}, []string{"outcome"}),
		currencyTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "currency_lock_trips_total",
			Help:      "Outbound replies replaced by the currency lock",
		}),
		postcodeFalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "postcode_fallbacks_total",
			Help:      "Calls that took the town-and-landmark postcode fallback",
		}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tidycall",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of processing one caller turn",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsStarted, m.turnsTotal, m.pricingTotal, m.bookingTotal, m.currencyTrips, m.postcodeFalls, m.turnLatency)
	return m
}

func (m *DialogueMetrics) ObserveCallStarted() {
	if m == nil {
		return
	}
	m.callsStarted.Inc()
}

func (m *DialogueMetrics) ObserveTurn(stage string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage).Inc()
}

func (m *DialogueMetrics) ObservePricing(outcome string) {
	if m == nil {
		return
	}
	m.pricingTotal.WithLabelValues(outcome).Inc()
}

func (m *DialogueMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *DialogueMetrics) ObserveCurrencyTrip() {
	if m == nil {
		return
	}
	m.currencyTrips.Inc()
}

func (m *DialogueMetrics) ObservePostcodeFallback() {
	if m == nil {
		return
	}
	m.postcodeFalls.Inc()
}

func (m *DialogueMetrics) ObserveTurnLatency(seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.Observe(seconds)
}
