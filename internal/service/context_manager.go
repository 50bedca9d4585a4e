package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"prism-ai/backend/internal/llm"
	"prism-ai/backend/internal/metrics"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
)

const (
	// shortTermMessages is the number of recent turns kept verbatim in the
	// short-term window.
	shortTermMessages = 20

	// summarizeThreshold is the user-turn count at which a conversation gets
	// its first mid-term summary.
	summarizeThreshold = 20

	// resummarizeEvery is how many additional user turns pass between
	// summary regenerations.
	resummarizeEvery = 10

	// summaryInputLimit caps the serialized history submitted to the
	// summarization call.
	summaryInputLimit = 50000
)

// IntegratedContext is everything the orchestrator injects around the live
// conversation: the raw recent window, the rolling summary and the long-term
// preferences string.
type IntegratedContext struct {
	ShortTerm []model.Message
	MidTerm   *model.ConversationSummary
	LongTerm  string
}

// ContextManager maintains the three memory tiers. Its operations are
// independent and share no mutable state beyond the repository.
type ContextManager struct {
	repo         repository.Repository
	provider     llm.Provider
	supportModel string
	windowSize   int
}

func NewContextManager(repo repository.Repository, provider llm.Provider, supportModel string) *ContextManager {
	return &ContextManager{
		repo:         repo,
		provider:     provider,
		supportModel: supportModel,
		windowSize:   shortTermMessages,
	}
}

// GetIntegratedContext assembles all three tiers. It fails soft: a missing
// conversation record just means no mid-term summary, and a preferences read
// failure means no long-term block. Neither is an error.
func (m *ContextManager) GetIntegratedContext(ctx context.Context, conversationID string, allMessages []model.Message) IntegratedContext {
	out := IntegratedContext{ShortTerm: shortTermWindow(allMessages, m.windowSize)}

	if conversationID != "" {
		conv, err := m.repo.GetConversation(ctx, conversationID)
		switch {
		case err == nil:
			out.MidTerm = conv.Summary
		case errors.Is(err, repository.ErrNotFound):
			// New conversation, nothing summarized yet.
		default:
			slog.Warn("Could not load conversation for context", "conversation_id", conversationID, "error", err)
		}
	}

	prefs, err := m.repo.GetPreferences(ctx)
	if err != nil {
		slog.Warn("Could not load preferences for context", "error", err)
	} else {
		out.LongTerm = FormatPreferences(prefs)
	}

	return out
}

// ShouldSummarize reports whether the conversation has crossed the user-turn
// threshold for mid-term summarization.
func (m *ContextManager) ShouldSummarize(messages []model.Message) bool {
	return countUserTurns(messages) >= summarizeThreshold
}

// SummaryDue additionally applies the regeneration cadence: the first summary
// lands at the threshold, then one every resummarizeEvery further user turns.
func (m *ContextManager) SummaryDue(messages []model.Message, hasSummary bool) bool {
	turns := countUserTurns(messages)
	if turns < summarizeThreshold {
		return false
	}
	if !hasSummary {
		return true
	}
	return (turns-summarizeThreshold)%resummarizeEvery == 0
}

var summarySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"project_context": {"type": "string"},
		"decisions": {"type": "array", "items": {"type": "string"}},
		"user_preferences": {"type": "array", "items": {"type": "string"}},
		"key_information": {"type": "array", "items": {"type": "string"}},
		"current_state": {"type": "string"}
	},
	"required": ["project_context", "decisions", "user_preferences", "key_information", "current_state"]
}`)

const summarizeSystemPrompt = `You compress older chat turns into a structured summary.
Capture what the conversation is about, decisions made, stated user
preferences, key facts worth remembering, and where things currently stand.
Be concrete; drop pleasantries. current_state must never be empty.`

// GenerateAndSaveSummary summarizes everything that has fallen out of the
// short-term window and persists the result, replacing any previous summary.
// Returns nil when there is nothing left to summarize. A failure is logged
// and yields nil: summary generation must never block the main chat flow,
// and a stale summary beats a corrupted one.
func (m *ContextManager) GenerateAndSaveSummary(ctx context.Context, conversationID string, messages []model.Message) *model.ConversationSummary {
	older := olderThanWindow(messages, m.windowSize)
	if len(older) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, msg := range older {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
	}
	history := truncateRunes(sb.String(), summaryInputLimit)

	var summary model.ConversationSummary
	err := m.provider.GenerateObject(ctx, &llm.ObjectRequest{
		Model:         m.supportModel,
		System:        summarizeSystemPrompt,
		Prompt:        history,
		SchemaName:    "conversation_summary",
		Schema:        summarySchema,
		ThinkingLevel: string(model.ThinkingMinimal),
	}, &summary)
	if err != nil {
		slog.Warn("Summary generation failed, keeping previous summary", "conversation_id", conversationID, "error", err)
		return nil
	}

	if err := m.repo.UpdateConversationSummary(ctx, conversationID, &summary); err != nil {
		slog.Warn("Could not persist summary", "conversation_id", conversationID, "error", err)
		return nil
	}

	metrics.SummariesGeneratedTotal.Inc()
	slog.Info("Saved conversation summary", "conversation_id", conversationID)
	return &summary
}

// Summarize runs the structured summarization call over an already
// serialized history string, without touching the store. Backs the
// /summarize endpoint so a client owning its own persistence can still use
// the server's summarizer.
func (m *ContextManager) Summarize(ctx context.Context, conversationHistory string) (*model.ConversationSummary, error) {
	var summary model.ConversationSummary
	err := m.provider.GenerateObject(ctx, &llm.ObjectRequest{
		Model:         m.supportModel,
		System:        summarizeSystemPrompt,
		Prompt:        truncateRunes(conversationHistory, summaryInputLimit),
		SchemaName:    "conversation_summary",
		Schema:        summarySchema,
		ThinkingLevel: string(model.ThinkingMinimal),
	}, &summary)
	if err != nil {
		return nil, fmt.Errorf("summarization call failed: %w", err)
	}
	return &summary, nil
}

// FormatPreferences renders the long-term memory tier as the prompt block
// body. Empty preferences yield an empty string so the block is omitted.
func FormatPreferences(prefs *model.UserPreferences) string {
	if prefs == nil {
		return ""
	}
	var lines []string
	if prefs.Language != "" {
		lines = append(lines, "Preferred language: "+prefs.Language)
	}
	if prefs.CodingStyle != "" {
		lines = append(lines, "Coding style: "+prefs.CodingStyle)
	}
	if len(prefs.PreferredStack) > 0 {
		lines = append(lines, "Preferred stack: "+strings.Join(prefs.PreferredStack, ", "))
	}
	if prefs.CustomInstructions != "" {
		lines = append(lines, prefs.CustomInstructions)
	}
	return strings.Join(lines, "\n")
}

func countUserTurns(messages []model.Message) int {
	n := 0
	for _, m := range messages {
		if m.Role == "user" {
			n++
		}
	}
	return n
}

// shortTermWindow keeps the most recent keep messages.
func shortTermWindow(messages []model.Message, keep int) []model.Message {
	if len(messages) <= keep {
		return messages
	}
	return messages[len(messages)-keep:]
}

// olderThanWindow returns everything shortTermWindow drops.
func olderThanWindow(messages []model.Message, keep int) []model.Message {
	if len(messages) <= keep {
		return nil
	}
	return messages[:len(messages)-keep]
}
