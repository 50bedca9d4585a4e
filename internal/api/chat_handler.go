package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/interfaces"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/service"
)

// maxRequestMessages caps the history a client may submit in one request.
const maxRequestMessages = 100

// ChatHandler serves the streaming chat endpoint and the standalone
// summarization endpoint.
type ChatHandler struct {
	orchestrator interfaces.Orchestrator
	summarizer   interfaces.Summarizer
}

func NewChatHandler(orchestrator interfaces.Orchestrator, summarizer interfaces.Summarizer) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, summarizer: summarizer}
}

// ChatMessageDTO is one history entry in a chat request.
type ChatMessageDTO struct {
	ID      string       `json:"id"`
	Role    string       `json:"role" validate:"required,oneof=user assistant system"`
	Content string       `json:"content"`
	Parts   []model.Part `json:"parts" validate:"required,min=1"`
}

// ChatStreamRequest is the body of POST /chat.
type ChatStreamRequest struct {
	ConversationID string                     `json:"conversation_id"`
	Messages       []ChatMessageDTO           `json:"messages" validate:"required,min=1,max=100,dive"`
	Mode           string                     `json:"mode" validate:"omitempty,oneof=auto general research coding"`
	ThinkingLevel  string                     `json:"thinking_level" validate:"omitempty,oneof=minimal low medium high"`
	LongTermMemory string                     `json:"long_term_memory" validate:"omitempty,max=10000"`
	MidTermSummary *model.ConversationSummary `json:"mid_term_summary"`
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	ConversationHistory string `json:"conversation_history" validate:"required,max=50000"`
}

// HandleChatStream validates the request, runs the orchestrator and streams
// the multi-part response as SSE. All validation happens before any provider
// call; once streaming starts, failures arrive as error events.
//
//	@Summary  Stream a chat response
//	@Tags     chat
//	@Accept   json
//	@Produce  text/event-stream
//	@Param    request body ChatStreamRequest true "Chat request"
//	@Success  200 {object} model.StreamEvent
//	@Failure  400 {object} ErrorResponse
//	@Router   /chat [post]
func (h *ChatHandler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateParts(req.Messages); err != nil {
		respondWithError(w, err)
		return
	}

	chatReq := toChatRequest(&req)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream := make(chan model.StreamEvent)
	go h.orchestrator.Run(r.Context(), chatReq, stream)

	for event := range stream {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected, dropping stream")
			break
		}
		if event.Error != "" {
			sendStreamError(w, event.Error)
			continue
		}
		if err := writeStreamEvent(w, event); err != nil {
			slog.Info("Stream write failed, client likely gone", "error", err)
			break
		}
	}
}

// HandleSummarize runs the structured summarization call over a serialized
// history supplied by a client that owns its own persistence.
//
//	@Summary  Summarize a conversation history
//	@Tags     chat
//	@Accept   json
//	@Produce  json
//	@Param    request body SummarizeRequest true "Serialized history"
//	@Success  200 {object} model.ConversationSummary
//	@Failure  400 {object} ErrorResponse
//	@Router   /summarize [post]
func (h *ChatHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.ConversationHistory)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// validateParts enforces the minimum part contract: every part must carry a
// type tag. Unknown types are accepted (the union passes them through).
func validateParts(messages []ChatMessageDTO) error {
	var issues []FieldIssue
	for i, msg := range messages {
		for j, part := range msg.Parts {
			if part.Type == "" {
				issues = append(issues, FieldIssue{
					Field: fmt.Sprintf("messages[%d].parts[%d].type", i, j),
					Issue: "part type is required",
				})
			}
		}
	}
	if len(issues) > 0 {
		return &validationError{Issues: issues}
	}
	return nil
}

func toChatRequest(req *ChatStreamRequest) *service.ChatRequest {
	messages := make([]model.Message, 0, len(req.Messages))
	for _, dto := range req.Messages {
		content := dto.Content
		if content == "" {
			// Fall back to the first plain text part so classification still
			// sees the user's words when the client omits content.
			for _, p := range dto.Parts {
				if p.Type == model.PartText {
					content = p.Text
					break
				}
			}
		}
		messages = append(messages, model.Message{
			ID:      dto.ID,
			Role:    dto.Role,
			Content: content,
			Parts:   dto.Parts,
		})
	}
	return &service.ChatRequest{
		ConversationID: req.ConversationID,
		Messages:       messages,
		Mode:           model.Mode(req.Mode),
		ThinkingLevel:  model.ThinkingLevel(req.ThinkingLevel),
		LongTermMemory: req.LongTermMemory,
		MidTermSummary: req.MidTermSummary,
	}
}
