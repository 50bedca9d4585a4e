package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/llm"
	mock_llm "prism-ai/backend/internal/llm/mocks"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
	mock_repo "prism-ai/backend/internal/repository/mocks"
	"prism-ai/backend/internal/service"
)

func setupContextManager(t *testing.T) (*service.ContextManager, *mock_repo.MockRepository, *mock_llm.MockProvider) {
	repo := mock_repo.NewMockRepository(t)
	provider := mock_llm.NewMockProvider(t)
	return service.NewContextManager(repo, provider, "support-model"), repo, provider
}

// makeTurns builds n user turns, each followed by an assistant reply.
func makeTurns(n int) []model.Message {
	var msgs []model.Message
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			model.Message{ID: fmt.Sprintf("u%d", i), Role: "user", Content: fmt.Sprintf("question %d", i)},
			model.Message{ID: fmt.Sprintf("a%d", i), Role: "assistant", Content: fmt.Sprintf("answer %d", i)},
		)
	}
	return msgs
}

func TestContextManager_ShouldSummarize(t *testing.T) {
	mgr, _, _ := setupContextManager(t)

	t.Run("19 user turns stays below threshold", func(t *testing.T) {
		assert.False(t, mgr.ShouldSummarize(makeTurns(19)))
	})

	t.Run("20 user turns crosses threshold", func(t *testing.T) {
		assert.True(t, mgr.ShouldSummarize(makeTurns(20)))
	})

	t.Run("assistant turns do not count", func(t *testing.T) {
		msgs := makeTurns(10)
		for i := 0; i < 30; i++ {
			msgs = append(msgs, model.Message{Role: "assistant", Content: "extra"})
		}
		assert.False(t, mgr.ShouldSummarize(msgs))
	})
}

func TestContextManager_SummaryDue(t *testing.T) {
	mgr, _, _ := setupContextManager(t)

	assert.False(t, mgr.SummaryDue(makeTurns(19), false))
	assert.True(t, mgr.SummaryDue(makeTurns(20), false))
	// With a summary already present, regeneration follows the cadence.
	assert.True(t, mgr.SummaryDue(makeTurns(20), true))
	assert.False(t, mgr.SummaryDue(makeTurns(25), true))
	assert.True(t, mgr.SummaryDue(makeTurns(30), true))
	// Missed threshold with no summary yet: always due.
	assert.True(t, mgr.SummaryDue(makeTurns(27), false))
}

func TestContextManager_GetIntegratedContext(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mgr, repo, _ := setupContextManager(t)

		summary := &model.ConversationSummary{CurrentState: "midway"}
		repo.On("GetConversation", ctx, "conv1").
			Return(&model.Conversation{ID: "conv1", Summary: summary}, nil).Once()
		repo.On("GetPreferences", ctx).
			Return(&model.UserPreferences{Language: "Japanese"}, nil).Once()

		msgs := makeTurns(30)
		got := mgr.GetIntegratedContext(ctx, "conv1", msgs)

		assert.Len(t, got.ShortTerm, 20)
		assert.Equal(t, msgs[len(msgs)-1], got.ShortTerm[len(got.ShortTerm)-1])
		assert.Equal(t, summary, got.MidTerm)
		assert.Contains(t, got.LongTerm, "Preferred language: Japanese")
	})

	t.Run("fails soft on missing conversation", func(t *testing.T) {
		mgr, repo, _ := setupContextManager(t)

		repo.On("GetConversation", ctx, "ghost").Return(nil, repository.ErrNotFound).Once()
		repo.On("GetPreferences", ctx).Return(nil, errors.New("db down")).Once()

		got := mgr.GetIntegratedContext(ctx, "ghost", makeTurns(2))
		assert.Nil(t, got.MidTerm)
		assert.Empty(t, got.LongTerm)
		assert.Len(t, got.ShortTerm, 4)
	})

	t.Run("no conversation id skips the summary lookup", func(t *testing.T) {
		mgr, repo, _ := setupContextManager(t)

		repo.On("GetPreferences", ctx).Return(&model.UserPreferences{}, nil).Once()

		got := mgr.GetIntegratedContext(ctx, "", makeTurns(1))
		assert.Nil(t, got.MidTerm)
	})
}

func TestContextManager_GenerateAndSaveSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - 20 user turns summarize the older half", func(t *testing.T) {
		mgr, repo, provider := setupContextManager(t)
		msgs := makeTurns(20) // 40 messages, 20 fall outside the window

		provider.On("GenerateObject", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				req := args.Get(1).(*llm.ObjectRequest)
				assert.Equal(t, "conversation_summary", req.SchemaName)
				// Only the turns outside the short-term window are fed in.
				assert.Contains(t, req.Prompt, "question 0")
				assert.NotContains(t, req.Prompt, "question 19")

				out := args.Get(2).(*model.ConversationSummary)
				*out = model.ConversationSummary{CurrentState: "deep in the weeds"}
			}).
			Return(nil).Once()
		repo.On("UpdateConversationSummary", ctx, "conv1", mock.Anything).Return(nil).Once()

		got := mgr.GenerateAndSaveSummary(ctx, "conv1", msgs)
		require.NotNil(t, got)
		assert.NotEmpty(t, got.CurrentState)
	})

	t.Run("nothing outside the window yields nil", func(t *testing.T) {
		mgr, _, _ := setupContextManager(t)
		got := mgr.GenerateAndSaveSummary(ctx, "conv1", makeTurns(9))
		assert.Nil(t, got)
	})

	t.Run("Failure - provider error keeps previous summary", func(t *testing.T) {
		mgr, _, provider := setupContextManager(t)

		provider.On("GenerateObject", ctx, mock.Anything, mock.Anything).
			Return(errors.New("503 service unavailable")).Once()

		got := mgr.GenerateAndSaveSummary(ctx, "conv1", makeTurns(20))
		assert.Nil(t, got)
	})

	t.Run("Failure - persistence error is swallowed", func(t *testing.T) {
		mgr, repo, provider := setupContextManager(t)

		provider.On("GenerateObject", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(2).(*model.ConversationSummary)
				out.CurrentState = "state"
			}).
			Return(nil).Once()
		repo.On("UpdateConversationSummary", ctx, "conv1", mock.Anything).
			Return(errors.New("disk full")).Once()

		got := mgr.GenerateAndSaveSummary(ctx, "conv1", makeTurns(20))
		assert.Nil(t, got)
	})
}

func TestContextManager_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mgr, _, provider := setupContextManager(t)

		provider.On("GenerateObject", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(2).(*model.ConversationSummary)
				*out = model.ConversationSummary{
					ProjectContext: "chat app",
					CurrentState:   "debugging streaming",
				}
			}).
			Return(nil).Once()

		got, err := mgr.Summarize(ctx, "user: hi\nassistant: hello\n")
		require.NoError(t, err)
		assert.Equal(t, "chat app", got.ProjectContext)
	})

	t.Run("Failure", func(t *testing.T) {
		mgr, _, provider := setupContextManager(t)

		provider.On("GenerateObject", ctx, mock.Anything, mock.Anything).
			Return(errors.New("boom")).Once()

		got, err := mgr.Summarize(ctx, "history")
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "summarization call failed")
	})
}

func TestFormatPreferences(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		got := service.FormatPreferences(&model.UserPreferences{
			Language:           "Japanese",
			CodingStyle:        "tabs, explicit errors",
			PreferredStack:     []string{"Go", "SQLite"},
			CustomInstructions: "Keep answers short.",
		})
		assert.Contains(t, got, "Preferred language: Japanese")
		assert.Contains(t, got, "Coding style: tabs, explicit errors")
		assert.Contains(t, got, "Preferred stack: Go, SQLite")
		assert.Contains(t, got, "Keep answers short.")
	})

	t.Run("empty preferences yield empty string", func(t *testing.T) {
		assert.Empty(t, service.FormatPreferences(&model.UserPreferences{}))
		assert.Empty(t, service.FormatPreferences(nil))
	})
}
