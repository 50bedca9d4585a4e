package interfaces

import (
	"context"

	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/service"
)

// Contracts consumed by the API layer. Handlers depend on these instead of
// concrete services so they can be tested against mocks.

// Orchestrator runs one chat request end to end, streaming events into the
// channel and closing it when done.
type Orchestrator interface {
	Run(ctx context.Context, req *service.ChatRequest, stream chan<- model.StreamEvent)
}

// ConversationService is the server-side persistence surface for clients
// that delegate conversation storage.
type ConversationService interface {
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error)
	UpdateTitle(ctx context.Context, conversationID, newTitle string) error
	UpdateMode(ctx context.Context, conversationID string, mode model.Mode) error
	DeleteConversation(ctx context.Context, conversationID string) error
	AppendMessage(ctx context.Context, conversationID string, msg *model.Message) (string, error)
	LastActiveConversation(ctx context.Context) (string, error)
}

// PreferencesService manages the singleton long-term memory row.
type PreferencesService interface {
	Get(ctx context.Context) (*model.UserPreferences, error)
	Save(ctx context.Context, prefs *model.UserPreferences) error
}

// Summarizer compresses a serialized conversation history into the
// structured mid-term summary shape.
type Summarizer interface {
	Summarize(ctx context.Context, conversationHistory string) (*model.ConversationSummary, error)
}
