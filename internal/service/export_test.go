package service

import "prism-ai/backend/internal/retry"

// Test-only exports for internals whose behavior is contract, not detail.

var (
	TrimToBudget    = trimToBudget
	EstimateSize    = estimateSize
	ScanAttachments = scanAttachments
)

// SetRetryPolicy swaps the orchestrator's backoff timings so tests do not
// sleep through real one-second delays. The retryable predicate is kept.
func SetRetryPolicy(o *Orchestrator, p retry.Policy) {
	p.Retryable = o.generationRetryable
	o.policy = p
}
