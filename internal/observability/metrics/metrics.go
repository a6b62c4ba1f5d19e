package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters for appointment command flows.
type SchedulingMetrics struct {
	operationsTotal  *prometheus.CounterVec
	meridiemGuesses  prometheus.Counter
	calendarFailures *prometheus.CounterVec
	commandLatency   *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Appointment operations by type and outcome",
		}, []string{"operation", "outcome"}),
		meridiemGuesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "scheduling",
			Name:      "meridiem_guesses_total",
			Help:      "Times a command omitted am/pm and the PM assumption decided",
		}),
		calendarFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "scheduling",
			Name:      "calendar_sync_failures_total",
			Help:      "Google Calendar sync failures that were logged and swallowed",
		}, []string{"operation"}),
		commandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "scheduling",
			Name:      "command_latency_seconds",
			Help:      "Latency of WhatsApp command processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.meridiemGuesses, m.calendarFailures, m.commandLatency)
	return m
}

func (m *SchedulingMetrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveMeridiemGuess() {
	if m == nil {
		return
	}
	m.meridiemGuesses.Inc()
}

func (m *SchedulingMetrics) ObserveCalendarFailure(operation string) {
	if m == nil {
		return
	}
	m.calendarFailures.WithLabelValues(operation).Inc()
}

func (m *SchedulingMetrics) ObserveCommandLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.commandLatency.WithLabelValues(operation).Observe(seconds)
}
