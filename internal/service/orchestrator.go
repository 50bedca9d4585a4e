package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"prism-ai/backend/internal/llm"
	"prism-ai/backend/internal/metrics"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/retry"
)

const (
	// contextCeilingChars is the hard input budget in characters. It sits
	// well below the provider's nominal context window: answer quality
	// measurably degrades before the window is actually full, so we cap
	// earlier instead of deriving the budget from the advertised limit.
	contextCeilingChars = 300000

	// promptReserveChars is held back for provider-side overhead (tool
	// schemas, wrapper tokens) on top of the system prompt.
	promptReserveChars = 4000

	// Output token ceilings. The reduced cap kicks in once the estimated
	// input crosses largeInputChars, bounding total latency on big requests.
	defaultMaxOutputTokens = 8192
	reducedMaxOutputTokens = 4096
	largeInputChars        = 150000

	// fallbackMaxOutputTokens bounds the degraded no-tool response.
	fallbackMaxOutputTokens = 2048

	// Step ceilings per context: research needs room for multi-query tool
	// use, coding gets one extra hop for a version-lookup search.
	stepsDefault  = 3
	stepsResearch = 10
	stepsCoding   = 5
)

// codeExtensions is the allowlist used to call an annotated text attachment
// a code file.
var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true,
	".jsx": true, ".rs": true, ".java": true, ".kt": true, ".rb": true,
	".c": true, ".h": true, ".cpp": true, ".cs": true, ".php": true,
	".swift": true, ".sh": true, ".sql": true, ".html": true, ".css": true,
	".yaml": true, ".yml": true, ".json": true, ".toml": true,
}

// attachmentMarkers flag a text part that inlines an annotated attachment
// body. The client writes "[attachment: name.ext]" (or the Japanese form)
// ahead of the file contents.
var attachmentMarkers = []string{"[attachment:", "[添付ファイル:"}

// ChatRequest is one orchestration invocation. Memory fields supplied by the
// client override whatever the server-side store holds, so a client that
// owns its own persistence never depends on ours.
type ChatRequest struct {
	ConversationID string
	Messages       []model.Message
	Mode           model.Mode
	ThinkingLevel  model.ThinkingLevel
	LongTermMemory string
	MidTermSummary *model.ConversationSummary
}

// Orchestrator drives one request through analyze → classify → plan →
// build-prompt → trim → generate, degrading to a tool-free fallback call
// when the provider keeps failing. The caller only ever sees a hard error
// when the fallback itself fails.
type Orchestrator struct {
	detector   *ModeDetector
	prompts    *PromptBuilder
	contextMgr *ContextManager
	planner    *ResearchPlanner
	provider   llm.Provider
	mainModel  string
	policy     retry.Policy
}

func NewOrchestrator(
	detector *ModeDetector,
	prompts *PromptBuilder,
	contextMgr *ContextManager,
	planner *ResearchPlanner,
	provider llm.Provider,
	mainModel string,
) *Orchestrator {
	o := &Orchestrator{
		detector:   detector,
		prompts:    prompts,
		contextMgr: contextMgr,
		planner:    planner,
		provider:   provider,
		mainModel:  mainModel,
	}
	o.policy = retry.DefaultPolicy(o.generationRetryable)
	return o
}

// streamStartedError wraps a provider failure that happened after output was
// already forwarded to the client. Retrying would duplicate visible text, so
// it is never retryable.
type streamStartedError struct{ err error }

func (e *streamStartedError) Error() string { return e.err.Error() }
func (e *streamStartedError) Unwrap() error { return e.err }

func (o *Orchestrator) generationRetryable(err error) bool {
	var started *streamStartedError
	if errors.As(err, &started) {
		return false
	}
	if llm.IsRetryable(err) {
		metrics.ProviderRetriesTotal.Inc()
		return true
	}
	return false
}

// Run executes the orchestration state machine, writing the response into
// stream. The first event is always the resolved StreamMeta; the channel is
// closed when the response (or the degraded fallback) completes.
func (o *Orchestrator) Run(ctx context.Context, req *ChatRequest, stream chan<- model.StreamEvent) {
	defer close(stream)

	// ANALYZE
	userText := latestUserText(req.Messages)
	att := scanAttachments(req.Messages)

	// CLASSIFY
	classification := o.classify(ctx, req, userText, att)

	// PLAN, research mode only and never when an attachment is present:
	// attachment analysis replaces broad research.
	var plan *model.ResearchPlan
	if classification.Mode == model.ModeResearch && !att.Present {
		var err error
		plan, err = o.planner.Plan(ctx, userText)
		if err != nil {
			slog.Warn("Continuing research mode without a plan", "error", err)
			plan = nil
		}
	}

	// Memory tiers: request-supplied values win over the store.
	integrated := o.contextMgr.GetIntegratedContext(ctx, req.ConversationID, req.Messages)
	longTerm := req.LongTermMemory
	if longTerm == "" {
		longTerm = integrated.LongTerm
	}
	midTerm := req.MidTermSummary
	if midTerm == nil {
		midTerm = integrated.MidTerm
	}

	// BUILD_PROMPT
	systemPrompt := o.prompts.Build(BuildInput{
		Mode:           classification.Mode,
		LongTermMemory: longTerm,
		MidTermSummary: midTerm,
		HasAttachment:  att.Present,
	})
	if plan != nil {
		systemPrompt += researchPlanBlock(plan)
	}
	if att.Present {
		systemPrompt += attachmentBlock
	}

	// TRIM
	budget := contextCeilingChars - len(systemPrompt) - promptReserveChars
	trimmed := trimToBudget(integrated.ShortTerm, budget)

	meta := model.StreamEvent{Meta: &model.StreamMeta{
		Mode:          classification.Mode,
		ThinkingLevel: classification.ThinkingLevel,
		Plan:          plan,
	}}
	if !emit(ctx, stream, meta) {
		return
	}

	// Mid-term refresh runs concurrently with generation and must never
	// block or fail the primary stream.
	o.maybeSummarize(req, midTerm != nil)

	// GENERATE
	genReq := &llm.GenerateRequest{
		Model:           o.mainModel,
		System:          systemPrompt,
		Messages:        toProviderMessages(trimmed),
		Tools:           llm.ToolConfig{WebSearch: true, URLFetch: true},
		ThinkingLevel:   string(classification.ThinkingLevel),
		MaxOutputTokens: outputTokenCap(trimmed, systemPrompt),
		MaxSteps:        stepCeiling(classification.Mode, att.Present),
	}

	err := o.policy.Do(ctx, func() error {
		return o.streamOnce(ctx, genReq, stream)
	})
	if err == nil {
		metrics.OrchestrationsTotal.WithLabelValues(string(classification.Mode), "success").Inc()
		return
	}
	if errors.Is(err, context.Canceled) {
		// The user hit stop; not a provider failure, nothing to recover.
		return
	}

	// FALLBACK: one last call, tools off, minimal reasoning, reduced cap.
	slog.Warn("Generation failed after retries, attempting fallback", "error", err)
	fallbackReq := &llm.GenerateRequest{
		Model:           o.mainModel,
		System:          systemPrompt + recoveryBlock,
		Messages:        genReq.Messages,
		Tools:           llm.ToolConfig{},
		ThinkingLevel:   string(model.ThinkingMinimal),
		MaxOutputTokens: fallbackMaxOutputTokens,
		MaxSteps:        1,
	}
	degraded := model.StreamEvent{Meta: &model.StreamMeta{
		Mode:          classification.Mode,
		ThinkingLevel: model.ThinkingMinimal,
		Degraded:      true,
	}}
	if !emit(ctx, stream, degraded) {
		return
	}
	if err := o.streamOnce(ctx, fallbackReq, stream); err != nil {
		metrics.OrchestrationsTotal.WithLabelValues(string(classification.Mode), "error").Inc()
		slog.Error("Fallback generation failed", "error", err)
		emit(ctx, stream, model.StreamEvent{Error: "The model provider is unavailable. Please try again later."})
		return
	}
	metrics.OrchestrationsTotal.WithLabelValues(string(classification.Mode), "fallback").Inc()
}

// classify resolves mode and thinking level. An explicit client mode skips
// detection; otherwise the quick keyword result is trusted outright for
// coding/research, and the paid classification call runs only for the
// ambiguous general-but-searchable case.
func (o *Orchestrator) classify(ctx context.Context, req *ChatRequest, userText string, att AttachmentInfo) model.IntentClassification {
	var c model.IntentClassification

	if req.Mode != "" && req.Mode != model.ModeAuto {
		c = model.IntentClassification{
			Mode:          req.Mode,
			NeedsSearch:   o.detector.NeedsSearchQuick(userText),
			ThinkingLevel: model.ThinkingMedium,
			Reasoning:     "mode set explicitly by client",
		}
	} else {
		quick := o.detector.ClassifyQuick(userText)
		needsSearch := o.detector.NeedsSearchQuick(userText)
		if quick != model.ModeGeneral {
			c = model.IntentClassification{
				Mode:          quick,
				NeedsSearch:   needsSearch,
				ThinkingLevel: model.ThinkingMedium,
				Reasoning:     "keyword detection",
			}
		} else if needsSearch {
			c = o.detector.ClassifyIntent(ctx, userText, recentContext(req.Messages))
		} else {
			c = model.IntentClassification{
				Mode:          model.ModeGeneral,
				ThinkingLevel: model.ThinkingMedium,
				Reasoning:     "no strong signals",
			}
		}
	}

	c = ApplyAttachmentOverride(c, att)

	if req.ThinkingLevel != "" {
		c.ThinkingLevel = req.ThinkingLevel
	}
	return c
}

// emit sends one event on the stream, giving up when the request context
// ends so Run never blocks on a stream nobody is reading anymore.
func emit(ctx context.Context, stream chan<- model.StreamEvent, ev model.StreamEvent) bool {
	select {
	case stream <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// streamOnce performs a single streaming generation call, forwarding chunks
// as stream events. An error after output was forwarded comes back wrapped
// as streamStartedError so the retry policy will not replay it.
func (o *Orchestrator) streamOnce(ctx context.Context, req *llm.GenerateRequest, stream chan<- model.StreamEvent) error {
	inner := make(chan llm.StreamChunk)
	errCh := make(chan error, 1)
	go func() {
		errCh <- o.provider.GenerateStream(ctx, req, inner)
	}()

	forwarded := false
	for chunk := range inner {
		if chunk.Error != "" {
			slog.Warn("Stream chunk error from provider", "error", chunk.Error)
			continue
		}
		for _, ev := range chunkEvents(chunk) {
			select {
			case stream <- ev:
				forwarded = true
			case <-ctx.Done():
				<-errCh
				return ctx.Err()
			}
		}
	}

	if err := <-errCh; err != nil {
		if forwarded {
			return &streamStartedError{err: err}
		}
		return err
	}
	return nil
}

// chunkEvents converts one provider chunk into client stream events.
func chunkEvents(chunk llm.StreamChunk) []model.StreamEvent {
	var events []model.StreamEvent
	if chunk.Thinking != "" {
		part := model.NewThinkingPart(chunk.Thinking)
		events = append(events, model.StreamEvent{Part: &part})
	}
	if chunk.Content != "" {
		part := model.NewTextPart(chunk.Content)
		events = append(events, model.StreamEvent{Part: &part})
	}
	if chunk.Source != nil {
		part := model.NewSourcePart(chunk.Source.Title, chunk.Source.URL, chunk.Source.Snippet)
		events = append(events, model.StreamEvent{Part: &part})
	}
	if chunk.Done {
		ev := model.StreamEvent{Done: true}
		if chunk.Usage != nil {
			ev.Usage = &model.TokenUsage{
				InputTokens:  chunk.Usage.InputTokens,
				OutputTokens: chunk.Usage.OutputTokens,
				TotalTokens:  chunk.Usage.TotalTokens,
			}
		}
		events = append(events, ev)
	}
	return events
}

// maybeSummarize fires the mid-term refresh as a background task with its
// own error boundary, detached from the request context so an early client
// disconnect cannot cancel it.
func (o *Orchestrator) maybeSummarize(req *ChatRequest, hasSummary bool) {
	if req.ConversationID == "" || !o.contextMgr.SummaryDue(req.Messages, hasSummary) {
		return
	}
	conversationID := req.ConversationID
	messages := req.Messages
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background summarization panicked", "conversation_id", conversationID, "panic", r)
			}
		}()
		o.contextMgr.GenerateAndSaveSummary(context.Background(), conversationID, messages)
	}()
}

// latestUserText extracts the newest user-authored plain text. Attachment
// bodies live in parts, not content, so classification sees intent only.
func latestUserText(messages []model.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// recentContext serializes the last few turns for the classification call.
func recentContext(messages []model.Message) string {
	start := len(messages) - 6
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for _, m := range messages[start:] {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}

// scanAttachments derives the coarse attachment classification from all
// messages' parts.
func scanAttachments(messages []model.Message) AttachmentInfo {
	var info AttachmentInfo
	for _, msg := range messages {
		for _, part := range msg.Parts {
			switch part.Type {
			case model.PartImage:
				info.Present = true
				info.HasImage = true
			case model.PartFile:
				info.Present = true
				info.HasText = true
				if part.File != nil && codeExtensions[strings.ToLower(filepath.Ext(part.File.Filename))] {
					info.HasCode = true
				}
			case model.PartText:
				for _, marker := range attachmentMarkers {
					idx := strings.Index(part.Text, marker)
					if idx < 0 {
						continue
					}
					info.Present = true
					info.HasText = true
					if isCodeAttachmentMarker(part.Text[idx+len(marker):]) {
						info.HasCode = true
					}
					break
				}
			}
		}
	}
	return info
}

// isCodeAttachmentMarker checks the filename annotated after an attachment
// marker against the code extension allowlist.
func isCodeAttachmentMarker(after string) bool {
	end := strings.IndexByte(after, ']')
	if end < 0 {
		return false
	}
	name := strings.TrimSpace(after[:end])
	return codeExtensions[strings.ToLower(filepath.Ext(name))]
}

// trimToBudget walks the history newest-first, keeping the longest
// contiguous suffix that fits the character budget. The newest message is
// always kept even when it alone exceeds the budget: the user's latest turn
// must never be silently dropped.
func trimToBudget(messages []model.Message, budget int) []model.Message {
	if len(messages) == 0 {
		return messages
	}
	total := 0
	cut := len(messages) - 1
	for i := len(messages) - 1; i >= 0; i-- {
		size := estimateSize(messages[i])
		if total+size > budget && i != len(messages)-1 {
			break
		}
		total += size
		cut = i
	}
	return messages[cut:]
}

// estimateSize is the character-count cost heuristic for one message. No
// tokenizer: characters are close enough for budgeting.
func estimateSize(msg model.Message) int {
	size := len(msg.Content)
	for _, p := range msg.Parts {
		size += len(p.Text)
		if p.File != nil {
			size += len(p.File.Data)
		}
		if p.Image != nil {
			size += len(p.Image.Data)
		}
	}
	return size
}

func toProviderMessages(messages []model.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		pm := llm.Message{Role: m.Role, Content: m.Content}
		if len(m.Parts) > 0 {
			if raw, err := json.Marshal(m.Parts); err == nil {
				pm.Parts = raw
			}
		}
		out = append(out, pm)
	}
	return out
}

func outputTokenCap(messages []model.Message, systemPrompt string) int {
	total := len(systemPrompt)
	for _, m := range messages {
		total += estimateSize(m)
	}
	if total > largeInputChars {
		return reducedMaxOutputTokens
	}
	return defaultMaxOutputTokens
}

func stepCeiling(mode model.Mode, hasAttachment bool) int {
	if hasAttachment {
		return stepsDefault
	}
	switch mode {
	case model.ModeResearch:
		return stepsResearch
	case model.ModeCoding:
		return stepsCoding
	default:
		return stepsDefault
	}
}
