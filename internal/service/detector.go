package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"prism-ai/backend/internal/llm"
	"prism-ai/backend/internal/metrics"
	"prism-ai/backend/internal/model"
)

// Quick-detection patterns. Coding signals are checked before research
// signals; the first family that matches wins. The user base is bilingual,
// so every family carries both English and Japanese forms.
var (
	codingVerbPattern = regexp.MustCompile(`(?i)\b(implement|debug|refactor|compile|unit test|stack ?trace|fix (a |the )?bug|write (a |some )?(code|function|script|test))\b|実装|コーディング|デバッグ|リファクタ|バグ|関数|クラスを|コードを|修正して`)
	codeBlockPattern  = regexp.MustCompile("```")
	packageMgrPattern = regexp.MustCompile(`(?i)\b(npm|npx|yarn|pnpm|pip|pipenv|poetry|cargo|gem|composer|gradle|maven)\b|\bgo (get|mod|test|build)\b`)

	researchPattern = regexp.MustCompile(`(?i)\b(research|investigate|compare|comparison|versus|vs\.?|pros and cons|state of the art|latest .* (trends?|news))\b|調べて|検索して|リサーチ|動向|比較して|とは何|について教えて`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)

	freshnessPattern = regexp.MustCompile(`(?i)\b(latest|newest|today|current(ly)?|recent(ly)?|this (week|month|year)|news|price|pricing|cost|released?)\b|最新|今日|現在|今年|今月|ニュース|価格|料金|リリース`)
	questionPattern  = regexp.MustCompile(`(?i)^(who|what|when|where|why|how)\b|^(誰|何|いつ|どこ|なぜ|どうやって|どの)`)
)

// ModeDetector classifies user utterances into a response mode. The quick
// paths are pure keyword matching; ClassifyIntent is the paid escalation for
// ambiguous input.
type ModeDetector struct {
	provider     llm.Provider
	supportModel string
}

func NewModeDetector(provider llm.Provider, supportModel string) *ModeDetector {
	return &ModeDetector{provider: provider, supportModel: supportModel}
}

// ClassifyQuick maps text to a mode with ordered pattern matching. Pure and
// deterministic: no I/O, same input always yields the same mode.
func (d *ModeDetector) ClassifyQuick(text string) model.Mode {
	if codingVerbPattern.MatchString(text) || codeBlockPattern.MatchString(text) || packageMgrPattern.MatchString(text) {
		return model.ModeCoding
	}
	if researchPattern.MatchString(text) || urlPattern.MatchString(text) {
		return model.ModeResearch
	}
	return model.ModeGeneral
}

// NeedsSearchQuick reports whether the text carries freshness, pricing or
// open-question language that suggests a web search would help. Independent
// of ClassifyQuick.
func (d *ModeDetector) NeedsSearchQuick(text string) bool {
	return freshnessPattern.MatchString(text) || questionPattern.MatchString(text)
}

var classificationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"mode": {"type": "string", "enum": ["general", "research", "coding"]},
		"needs_search": {"type": "boolean"},
		"needs_url_context": {"type": "boolean"},
		"thinking_level": {"type": "string", "enum": ["minimal", "low", "medium", "high"]},
		"reasoning": {"type": "string"}
	},
	"required": ["mode", "needs_search", "needs_url_context", "thinking_level", "reasoning"]
}`)

const classifySystemPrompt = `You classify a chat message into a response mode.
Modes: "general" for conversation and simple questions, "research" when the
answer needs current information from the web, "coding" for programming tasks.
Also decide whether a web search or reading a provided URL is needed, and pick
a thinking level (minimal/low/medium/high) matching the task's difficulty.`

// ClassifyIntent asks the support model for a structured classification. It
// never returns an error: on provider failure the fixed default
// {general, no search, medium} comes back tagged with the failure reason.
func (d *ModeDetector) ClassifyIntent(ctx context.Context, text, recentContext string) model.IntentClassification {
	metrics.ClassifierEscalationsTotal.Inc()

	prompt := fmt.Sprintf("Message:\n%s", truncateRunes(text, 1000))
	if recentContext != "" {
		prompt += fmt.Sprintf("\n\nRecent conversation:\n%s", truncateRunes(recentContext, 2000))
	}

	var result model.IntentClassification
	err := d.provider.GenerateObject(ctx, &llm.ObjectRequest{
		Model:         d.supportModel,
		System:        classifySystemPrompt,
		Prompt:        prompt,
		SchemaName:    "intent_classification",
		Schema:        classificationSchema,
		ThinkingLevel: string(model.ThinkingMinimal),
	}, &result)
	if err != nil {
		slog.Warn("Intent classification failed, using default", "error", err)
		return model.IntentClassification{
			Mode:          model.ModeGeneral,
			NeedsSearch:   false,
			ThinkingLevel: model.ThinkingMedium,
			Reasoning:     fmt.Sprintf("classification unavailable: %v", err),
		}
	}
	return result
}

// AttachmentInfo is the coarse attachment classification derived in the
// orchestrator's analyze step.
type AttachmentInfo struct {
	Present  bool
	HasImage bool
	HasText  bool
	HasCode  bool
}

// ApplyAttachmentOverride recomputes mode and depth when an attachment is
// present. Attachment analysis dominates a broad research request, so any
// attachment downgrades research to general.
func ApplyAttachmentOverride(c model.IntentClassification, att AttachmentInfo) model.IntentClassification {
	if !att.Present {
		return c
	}
	switch {
	case att.HasCode && c.Mode == model.ModeCoding:
		c.ThinkingLevel = model.ThinkingHigh
	case c.Mode == model.ModeResearch:
		c.Mode = model.ModeGeneral
		c.ThinkingLevel = model.ThinkingMedium
	case att.HasImage && !att.HasText && !att.HasCode:
		c.ThinkingLevel = model.ThinkingMedium
	default:
		c.ThinkingLevel = model.ThinkingMedium
	}
	return c
}

// truncateRunes shortens a string to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
