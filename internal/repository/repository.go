package repository

import (
	"context"

	"prism-ai/backend/internal/model"
)

// Repository defines the persistence operations for the two collections the
// application owns: conversations (with their messages) and preferences.
type Repository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	GetConversations(ctx context.Context) ([]*model.Conversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error
	UpdateConversationMode(ctx context.Context, conversationID string, mode model.Mode) error
	UpdateConversationSummary(ctx context.Context, conversationID string, summary *model.ConversationSummary) error
	DeleteConversation(ctx context.Context, conversationID string) error

	AddMessage(ctx context.Context, conversationID string, message *model.Message) error
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// GetPreferences returns the singleton preferences row, creating it with
	// defaults on first read.
	GetPreferences(ctx context.Context) (*model.UserPreferences, error)
	SavePreferences(ctx context.Context, prefs *model.UserPreferences) error

	GetLastActiveConversation(ctx context.Context) (string, error)
	SetLastActiveConversation(ctx context.Context, conversationID string) error
}
