package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	ordersCreated   prometheus.Counter
	ordersCanceled  prometheus.Counter
	ordersTriggered prometheus.Counter
	auditFailures   prometheus.Counter
	upstream        *prometheus.CounterVec
	executorPass    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub",
			Name:      "limit_orders_created_total",
			Help:      "Limit orders created.",
		}),
		ordersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub",
			Name:      "limit_orders_canceled_total",
			Help:      "Limit orders canceled by their owner.",
		}),
		ordersTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub",
			Name:      "limit_orders_triggered_total",
			Help:      "Limit orders triggered by the executor.",
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub",
			Name:      "order_history_audit_failures_total",
			Help:      "Best-effort audit rows that could not be written.",
		}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hub",
			Name:      "upstream_requests_total",
			Help:      "Calls to external providers by outcome.",
		}, []string{"provider", "outcome"}),
		executorPass: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hub",
			Name:      "executor_pass_seconds",
			Help:      "Duration of executor passes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ordersCreated,
			m.ordersCanceled,
			m.ordersTriggered,
			m.auditFailures,
			m.upstream,
			m.executorPass,
		)
	}
	return m
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) OrderCanceled() {
	if m == nil {
		return
	}
	m.ordersCanceled.Inc()
}

func (m *Metrics) OrdersTriggered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ordersTriggered.Add(float64(n))
}

func (m *Metrics) AuditFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

func (m *Metrics) Upstream(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstream.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveExecutorPass(d time.Duration) {
	if m == nil {
		return
	}
	m.executorPass.Observe(d.Seconds())
}
