package model

import (
	"time"
)

// Mode selects the system prompt family and how aggressively the model is
// allowed to use tools for a conversation.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeGeneral  Mode = "general"
	ModeResearch Mode = "research"
	ModeCoding   Mode = "coding"
)

// ThinkingLevel is a coarse reasoning-depth hint forwarded to the provider.
type ThinkingLevel string

const (
	ThinkingMinimal ThinkingLevel = "minimal"
	ThinkingLow     ThinkingLevel = "low"
	ThinkingMedium  ThinkingLevel = "medium"
	ThinkingHigh    ThinkingLevel = "high"
)

// Conversation stores metadata about a single chat thread. The title
// auto-derives from the first user message until explicitly renamed.
type Conversation struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Mode      Mode                 `json:"mode"`
	Summary   *ConversationSummary `json:"summary,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Message is a single turn in a conversation. Content holds the plain-text
// question only; Parts is the authoritative rich representation and must
// survive persistence byte-for-byte (tool-call correlation ids live there).
type Message struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Parts     []Part      `json:"parts,omitempty"`
	Usage     *TokenUsage `json:"usage,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TokenUsage is the provider-reported cost of one generation.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// FullConversation bundles a conversation with its ordered messages.
type FullConversation struct {
	Conversation
	Messages []Message `json:"messages"`
}

// ConversationSummary is the mid-term memory tier: a structured digest of the
// turns that fell out of the short-term window. Each regeneration replaces
// the previous summary wholesale.
type ConversationSummary struct {
	ProjectContext  string   `json:"project_context"`
	Decisions       []string `json:"decisions"`
	UserPreferences []string `json:"user_preferences"`
	KeyInformation  []string `json:"key_information"`
	CurrentState    string   `json:"current_state"`
}

// UserPreferences is the long-term memory tier, a singleton row per
// installation created lazily with defaults on first read.
type UserPreferences struct {
	ID                 string    `json:"id"`
	Language           string    `json:"language"`
	CodingStyle        string    `json:"coding_style"`
	PreferredStack     []string  `json:"preferred_stack"`
	CustomInstructions string    `json:"custom_instructions"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IntentClassification is the ephemeral result of classifying one user
// utterance. It is produced per request and never persisted.
type IntentClassification struct {
	Mode            Mode          `json:"mode"`
	NeedsSearch     bool          `json:"needs_search"`
	NeedsURLContext bool          `json:"needs_url_context"`
	ThinkingLevel   ThinkingLevel `json:"thinking_level"`
	Reasoning       string        `json:"reasoning"`
}

// SearchQuery is one entry in a research plan.
type SearchQuery struct {
	Query    string `json:"query"`
	Purpose  string `json:"purpose"`
	Language string `json:"language"`
}

// ResearchPlan is the ephemeral pre-generation artifact injected into the
// system prompt for a single research-mode request.
type ResearchPlan struct {
	SearchQueries    []SearchQuery `json:"search_queries"`
	URLsToAnalyze    []string      `json:"urls_to_analyze"`
	ExpectedSources  string        `json:"expected_sources"`
	FallbackStrategy string        `json:"fallback_strategy"`
}

// StreamEvent is a single chunk of a streamed chat response as sent to the
// client over SSE. Exactly one payload field is set per event.
type StreamEvent struct {
	Part  *Part       `json:"part,omitempty"`
	Meta  *StreamMeta `json:"meta,omitempty"`
	Usage *TokenUsage `json:"usage,omitempty"`
	Done  bool        `json:"done,omitempty"`
	Error string      `json:"error,omitempty"`
}

// StreamMeta is the first event on every chat stream; the client uses it to
// label the response and persist the resolved conversation mode.
type StreamMeta struct {
	Mode          Mode          `json:"mode"`
	ThinkingLevel ThinkingLevel `json:"thinking_level"`
	Plan          *ResearchPlan `json:"plan,omitempty"`
	Degraded      bool          `json:"degraded,omitempty"`
}
