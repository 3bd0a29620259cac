// Package metrics доменные метрики сервиса. Публикуются через pkg/metrics.PrometheusServer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bullion_market"

// Registry счётчики доменных операций. Методы безопасны для nil.
type Registry struct {
	OracleRequests *prometheus.CounterVec
	OracleFetch    prometheus.Histogram
	Settlements    *prometheus.CounterVec
	SettledAmount  prometheus.Counter
	SideEffects    *prometheus.CounterVec
	Exports        *prometheus.CounterVec
	Repushes       *prometheus.CounterVec
}

func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		OracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Reference price requests by source (live, cache, stale, fallback).",
		}, []string{"source"}),
		OracleFetch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_fetch_seconds",
			Help:      "Upstream quote fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlement attempts by outcome code.",
		}, []string{"outcome"}),
		SettledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_amount_total",
			Help:      "Sum of settled purchase totals.",
		}),
		SideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_commit_tasks_total",
			Help:      "Best-effort post-commit tasks by name and result.",
		}, []string{"task", "result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_decisions_total",
			Help:      "Export review decisions by action and result.",
		}, []string{"action", "result"}),
		Repushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repush_steps_total",
			Help:      "Periodic repush steps by step and result.",
		}, []string{"step", "result"}),
	}

	reg.MustRegister(
		r.OracleRequests,
		r.OracleFetch,
		r.Settlements,
		r.SettledAmount,
		r.SideEffects,
		r.Exports,
		r.Repushes,
	)

	return r
}

func (r *Registry) ObserveOracle(source string) {
	if r == nil {
		return
	}
	r.OracleRequests.WithLabelValues(source).Inc()
}

func (r *Registry) ObserveOracleFetch(seconds float64) {
	if r == nil {
		return
	}
	r.OracleFetch.Observe(seconds)
}

func (r *Registry) ObserveSettlement(outcome string, amount float64) {
	if r == nil {
		return
	}
	r.Settlements.WithLabelValues(outcome).Inc()
	if amount > 0 {
		r.SettledAmount.Add(amount)
	}
}

func (r *Registry) ObserveTask(task string, err error) {
	if r == nil {
		return
	}
	r.SideEffects.WithLabelValues(task, result(err)).Inc()
}

func (r *Registry) ObserveExport(action string, err error) {
	if r == nil {
		return
	}
	r.Exports.WithLabelValues(action, result(err)).Inc()
}

func (r *Registry) ObserveRepush(step string, err error) {
	if r == nil {
		return
	}
	r.Repushes.WithLabelValues(step, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
