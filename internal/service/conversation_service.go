package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
)

// titleRunes is how much of the first user message becomes the auto title.
const titleRunes = 30

// ConversationService owns conversation CRUD for clients that delegate
// persistence to the server. The orchestrator itself never writes here.
type ConversationService struct {
	repo repository.Repository
}

func NewConversationService(repo repository.Repository) *ConversationService {
	return &ConversationService{repo: repo}
}

func (s *ConversationService) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	return s.repo.GetConversations(ctx)
}

func (s *ConversationService) GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, conversationID)
		}
		return nil, fmt.Errorf("could not get conversation: %w", err)
	}
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}
	return &model.FullConversation{Conversation: *conv, Messages: messages}, nil
}

func (s *ConversationService) UpdateTitle(ctx context.Context, conversationID, newTitle string) error {
	if newTitle == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	err := s.repo.UpdateConversationTitle(ctx, conversationID, newTitle)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, conversationID)
	}
	return err
}

func (s *ConversationService) UpdateMode(ctx context.Context, conversationID string, mode model.Mode) error {
	switch mode {
	case model.ModeGeneral, model.ModeResearch, model.ModeCoding:
	default:
		return fmt.Errorf("%w: invalid mode %q", app_errors.ErrValidation, mode)
	}
	err := s.repo.UpdateConversationMode(ctx, conversationID, mode)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: conversation %s", app_errors.ErrNotFound, conversationID)
	}
	return err
}

func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID string) error {
	slog.Info("Deleting conversation", "conversation_id", conversationID)
	return s.repo.DeleteConversation(ctx, conversationID)
}

// AppendMessage persists one message, creating the conversation on first
// write. The auto title derives from the first user message, truncated to 30
// runes, and stays until the client renames it. Parts are stored exactly as
// received. The conversation becomes the session's last-active one.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID string, msg *model.Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	isNew := conversationID == ""
	if isNew {
		conversationID = uuid.NewString()
		title := truncateRunes(msg.Content, titleRunes)
		if title == "" {
			title = "New conversation"
		}
		conv := &model.Conversation{
			ID:        conversationID,
			Title:     title,
			Mode:      model.ModeGeneral,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return "", fmt.Errorf("could not create conversation: %w", err)
		}
	}

	if err := s.repo.AddMessage(ctx, conversationID, msg); err != nil {
		return "", fmt.Errorf("could not add message: %w", err)
	}

	if err := s.repo.SetLastActiveConversation(ctx, conversationID); err != nil {
		slog.Warn("Could not update last-active conversation", "error", err)
	}
	return conversationID, nil
}

// LastActiveConversation returns the id stored for session resumption, or
// empty when none was recorded yet.
func (s *ConversationService) LastActiveConversation(ctx context.Context) (string, error) {
	id, err := s.repo.GetLastActiveConversation(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return id, err
}
