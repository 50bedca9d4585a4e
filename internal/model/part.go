package model

import (
	"encoding/json"
)

// PartType discriminates the Part union.
type PartType string

const (
	PartText       PartType = "text"
	PartThinking   PartType = "thinking"
	PartImage      PartType = "image"
	PartFile       PartType = "file"
	PartSource     PartType = "source"
	PartToolCall   PartType = "tool-call"
	PartToolResult PartType = "tool-result"
)

// Part is one element of a message's rich representation: a closed tagged
// union dispatched on Type, with exactly one payload pointer set per variant.
//
// Parts decoded from JSON keep their original bytes and re-marshal to them
// unchanged, so unknown part kinds (and field ordering inside known ones)
// survive a persistence round-trip instead of being normalized away. The
// provider's multi-turn protocol depends on this: a tool-call's opaque
// signature must travel back exactly as it arrived.
type Part struct {
	Type PartType

	Text       string
	Image      *ImagePayload
	File       *FilePayload
	Source     *SourcePayload
	ToolCall   *ToolCallPayload
	ToolResult *ToolResultPayload

	raw json.RawMessage
}

// ImagePayload carries an inline or referenced image attachment.
type ImagePayload struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// FilePayload carries a file attachment. For text files the annotated body is
// inlined in Data; binary files carry a reference only.
type FilePayload struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Data      string `json:"data,omitempty"`
}

// SourcePayload is a grounding citation emitted by the search tool.
type SourcePayload struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// ToolCallPayload records one tool invocation requested by the model.
// Signature is an opaque per-turn token issued by the provider; it must be
// echoed back verbatim on the next turn or the provider rejects the call.
type ToolCallPayload struct {
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Args       json.RawMessage `json:"args,omitempty"`
	Signature  string          `json:"signature,omitempty"`
}

// ToolResultPayload records the outcome of a tool invocation, correlated to
// its call by ToolCallID.
type ToolResultPayload struct {
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Constructors for parts built in-process (no raw bytes to preserve).

func NewTextPart(text string) Part     { return Part{Type: PartText, Text: text} }
func NewThinkingPart(text string) Part { return Part{Type: PartThinking, Text: text} }

func NewSourcePart(title, url, snippet string) Part {
	return Part{Type: PartSource, Source: &SourcePayload{Title: title, URL: url, Snippet: snippet}}
}

// partEnvelope is the wire shape shared by all known variants.
type partEnvelope struct {
	Type       PartType           `json:"type"`
	Text       string             `json:"text,omitempty"`
	Image      *ImagePayload      `json:"image,omitempty"`
	File       *FilePayload       `json:"file,omitempty"`
	Source     *SourcePayload     `json:"source,omitempty"`
	ToolCall   *ToolCallPayload   `json:"tool_call,omitempty"`
	ToolResult *ToolResultPayload `json:"tool_result,omitempty"`
}

// UnmarshalJSON decodes a part while retaining the original bytes for
// lossless re-marshaling. A part whose type tag is unknown is kept as an
// opaque passthrough: Type is set, payload fields stay nil.
func (p *Part) UnmarshalJSON(b []byte) error {
	p.raw = append(p.raw[:0], b...)

	var env partEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p.Type = env.Type

	switch env.Type {
	case PartText, PartThinking:
		p.Text = env.Text
	case PartImage:
		p.Image = env.Image
	case PartFile:
		p.File = env.File
	case PartSource:
		p.Source = env.Source
	case PartToolCall:
		p.ToolCall = env.ToolCall
	case PartToolResult:
		p.ToolResult = env.ToolResult
	default:
		// Unknown tag: passthrough only.
	}
	return nil
}

// MarshalJSON emits the original bytes when the part came off the wire,
// otherwise the canonical envelope for in-process parts.
func (p Part) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	env := partEnvelope{
		Type:       p.Type,
		Text:       p.Text,
		Image:      p.Image,
		File:       p.File,
		Source:     p.Source,
		ToolCall:   p.ToolCall,
		ToolResult: p.ToolResult,
	}
	return json.Marshal(env)
}
