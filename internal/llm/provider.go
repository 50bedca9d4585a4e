package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Message is one turn as sent to the provider. Parts, when present, carries
// the original rich representation (tool calls with their signatures) so the
// provider can validate multi-turn tool protocols.
type Message struct {
	Role    string          `json:"role"`
	Content string          `json:"content"`
	Parts   json.RawMessage `json:"parts,omitempty"`
}

// ToolConfig toggles the provider's built-in tools for one generation.
type ToolConfig struct {
	WebSearch bool `json:"web_search"`
	URLFetch  bool `json:"url_fetch"`
}

// GenerateRequest describes one streaming generation call.
type GenerateRequest struct {
	Model           string
	System          string
	Messages        []Message
	Tools           ToolConfig
	ThinkingLevel   string // minimal | low | medium | high
	MaxOutputTokens int
	MaxSteps        int
}

// ObjectRequest describes a structured-output call: the response is decoded
// into a caller-supplied struct instead of streamed as prose.
type ObjectRequest struct {
	Model         string
	System        string
	Prompt        string
	SchemaName    string
	Schema        json.RawMessage
	ThinkingLevel string
}

// Source is a grounding citation surfaced by the provider's search tool.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Usage is the provider-reported token accounting for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// StreamChunk is a single increment of a streamed generation. At most one of
// Content/Thinking/Source is set; Usage arrives with the final Done chunk.
type StreamChunk struct {
	Content  string
	Thinking string
	Source   *Source
	Usage    *Usage
	Done     bool
	Error    string
}

// Provider is the seam between the orchestration core and the hosted model.
// GenerateStream closes ch when the stream ends.
type Provider interface {
	GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamChunk) error
	GenerateObject(ctx context.Context, req *ObjectRequest, out any) error
}

// retryableSignatures are the provider error shapes worth another attempt:
// rate limiting, service unavailability, gateway timeouts and explicit
// resource exhaustion. Everything else aborts the retry loop immediately.
var retryableSignatures = []string{
	"rate limit",
	"too many requests",
	"429",
	"unavailable",
	"503",
	"504",
	"gateway timeout",
	"temporarily unavailable",
	"resource exhausted",
	"resource_exhausted",
	"overloaded",
}

// IsRetryable reports whether a provider error is transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range retryableSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
