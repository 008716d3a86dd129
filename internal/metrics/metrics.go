// Package metrics holds Prometheus instruments shared across the platform.
// All collectors register with the global registry, so importing this
// package anywhere is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WorkflowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provision_workflows_total",
			Help: "Provisioning workflows by resource kind, operation, and outcome.",
		},
		[]string{"kind", "op", "outcome"})

	CompensationFailureTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "provision_compensation_failures_total",
			Help: "Rollback steps that themselves failed, leaving orphaned external state.",
		})

	InconsistentStateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "provision_inconsistent_state_total",
			Help: "Detected DNS/filesystem/row divergences requiring manual cleanup.",
		})

	DNSCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_provider_calls_total",
			Help: "Calls to the DNS provider API by operation and outcome.",
		},
		[]string{"op", "outcome"})
)

func init() {
	prometheus.MustRegister(
		WorkflowTotal,
		CompensationFailureTotal,
		InconsistentStateTotal,
		DNSCallTotal,
	)
}
