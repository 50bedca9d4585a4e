package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prism-ai/backend/internal/llm"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/retry"
)

// maxPlanQueries bounds the search plan regardless of what the model emits.
const maxPlanQueries = 5

var planSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"search_queries": {
			"type": "array",
			"maxItems": 5,
			"items": {
				"type": "object",
				"properties": {
					"query": {"type": "string"},
					"purpose": {"type": "string"},
					"language": {"type": "string"}
				},
				"required": ["query", "purpose", "language"]
			}
		},
		"urls_to_analyze": {"type": "array", "items": {"type": "string"}},
		"expected_sources": {"type": "string"},
		"fallback_strategy": {"type": "string"}
	},
	"required": ["search_queries", "urls_to_analyze", "expected_sources", "fallback_strategy"]
}`)

const planSystemPrompt = `You prepare a web research plan for a question.
Produce at most 5 search queries, each with its purpose and the language to
search in (match the likely language of good sources, not necessarily the
user's). List any URLs from the question worth reading directly, name the
kinds of sources you expect to rely on, and state a fallback strategy for
when searches come up empty.`

// ResearchPlanner produces a structured multi-query search plan ahead of the
// main research-mode generation call.
type ResearchPlanner struct {
	provider     llm.Provider
	supportModel string
	policy       retry.Policy
}

func NewResearchPlanner(provider llm.Provider, supportModel string) *ResearchPlanner {
	return &ResearchPlanner{
		provider:     provider,
		supportModel: supportModel,
		// Two attempts: planning is best-effort and the orchestrator
		// continues without a plan on final failure.
		policy: retry.Policy{
			MaxAttempts: 2,
			BaseDelay:   time.Second,
			Multiplier:  2.0,
			Retryable:   llm.IsRetryable,
		},
	}
}

// Plan submits the question (truncated to 2000 chars) to a structured-plan
// call. Transient failures are retried per the shared policy; the final
// error propagates so the caller can degrade to planless research.
func (p *ResearchPlanner) Plan(ctx context.Context, question string) (*model.ResearchPlan, error) {
	var plan model.ResearchPlan
	err := p.policy.Do(ctx, func() error {
		plan = model.ResearchPlan{}
		return p.provider.GenerateObject(ctx, &llm.ObjectRequest{
			Model:         p.supportModel,
			System:        planSystemPrompt,
			Prompt:        truncateRunes(question, 2000),
			SchemaName:    "research_plan",
			Schema:        planSchema,
			ThinkingLevel: string(model.ThinkingLow),
		}, &plan)
	})
	if err != nil {
		return nil, fmt.Errorf("research planning failed: %w", err)
	}

	if len(plan.SearchQueries) > maxPlanQueries {
		plan.SearchQueries = plan.SearchQueries[:maxPlanQueries]
	}
	return &plan, nil
}
