// Package metrics exposes prometheus counters for orchestration outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrchestrationsTotal counts completed orchestration runs by resolved
	// mode and outcome ("success", "fallback", "error").
	OrchestrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "orchestrations_total",
		Help:      "Completed orchestration runs by mode and outcome.",
	}, []string{"mode", "outcome"})

	// ProviderRetriesTotal counts individual retried provider calls.
	ProviderRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "provider_retries_total",
		Help:      "Provider calls that failed with a retryable error.",
	})

	// ClassifierEscalationsTotal counts ambiguous inputs escalated from the
	// quick keyword detector to the paid classification call.
	ClassifierEscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "classifier_escalations_total",
		Help:      "Intent classifications escalated to the support model.",
	})

	// SummariesGeneratedTotal counts background mid-term summaries persisted.
	SummariesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "prism",
		Name:      "summaries_generated_total",
		Help:      "Mid-term conversation summaries generated and saved.",
	})
)
