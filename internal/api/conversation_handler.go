package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/interfaces"
	"prism-ai/backend/internal/model"
)

// ConversationHandler serves the server-side persistence surface.
type ConversationHandler struct {
	service interfaces.ConversationService
}

func NewConversationHandler(svc interfaces.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

// UpdateTitleRequest is the body of PUT /conversations/{id}/title.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// UpdateModeRequest is the body of PUT /conversations/{id}/mode.
type UpdateModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=general research coding"`
}

// AppendMessageRequest is the body of POST /conversations/{id}/messages.
// Parts round-trip byte-for-byte through storage.
type AppendMessageRequest struct {
	Role    string       `json:"role" validate:"required,oneof=user assistant system"`
	Content string       `json:"content"`
	Parts   []model.Part `json:"parts"`
}

//	@Summary  List conversations
//	@Tags     conversations
//	@Produce  json
//	@Success  200 {array} model.Conversation
//	@Router   /conversations [get]
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.ListConversations(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, convs)
}

//	@Summary  Get a conversation with its messages
//	@Tags     conversations
//	@Produce  json
//	@Param    conversationID path string true "Conversation ID"
//	@Success  200 {object} model.FullConversation
//	@Failure  404 {object} ErrorResponse
//	@Router   /conversations/{conversationID} [get]
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	full, err := h.service.GetFullConversation(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, full)
}

func (h *ConversationHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.UpdateTitle(r.Context(), conversationID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *ConversationHandler) UpdateMode(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.UpdateMode(r.Context(), conversationID, model.Mode(req.Mode)); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.DeleteConversation(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// AppendMessage persists one message. An empty conversationID path segment
// ("new") creates the conversation and returns its id.
func (h *ConversationHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "new" {
		conversationID = ""
	}

	var req AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	msg := &model.Message{Role: req.Role, Content: req.Content, Parts: req.Parts}
	id, err := h.service.AppendMessage(r.Context(), conversationID, msg)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"conversation_id": id, "message_id": msg.ID})
}

// GetLastActive returns the conversation id stored for session resumption.
func (h *ConversationHandler) GetLastActive(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.LastActiveConversation(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"conversation_id": id})
}
