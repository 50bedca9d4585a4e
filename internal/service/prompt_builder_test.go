package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/service"
)

func TestPromptBuilder_Build(t *testing.T) {
	builder := service.NewPromptBuilder()

	t.Run("fixed block order", func(t *testing.T) {
		prompt := builder.Build(service.BuildInput{
			Mode:           model.ModeCoding,
			LongTermMemory: "Preferred language: Japanese",
			MidTermSummary: &model.ConversationSummary{
				ProjectContext: "building a CLI tool",
				Decisions:      []string{"use cobra"},
				CurrentState:   "implementing subcommands",
			},
		})

		persona := strings.Index(prompt, "You are Prism")
		tools := strings.Index(prompt, "Tool usage policy:")
		mode := strings.Index(prompt, "Response mode: coding.")
		prefs := strings.Index(prompt, "User preferences:")
		summary := strings.Index(prompt, "Conversation context")

		require.NotEqual(t, -1, persona)
		require.NotEqual(t, -1, tools)
		require.NotEqual(t, -1, mode)
		require.NotEqual(t, -1, prefs)
		require.NotEqual(t, -1, summary)

		assert.Less(t, persona, tools)
		assert.Less(t, tools, mode)
		assert.Less(t, mode, prefs)
		assert.Less(t, prefs, summary)

		assert.Contains(t, prompt, "Preferred language: Japanese")
		assert.Contains(t, prompt, "Project: building a CLI tool")
		assert.Contains(t, prompt, "Decision: use cobra")
		assert.Contains(t, prompt, "Current state: implementing subcommands")
	})

	t.Run("optional blocks omitted when empty", func(t *testing.T) {
		prompt := builder.Build(service.BuildInput{Mode: model.ModeGeneral})

		assert.NotContains(t, prompt, "User preferences:")
		assert.NotContains(t, prompt, "Conversation context")
		assert.Contains(t, prompt, "Response mode: general conversation.")
	})

	t.Run("unknown mode falls back to general", func(t *testing.T) {
		prompt := builder.Build(service.BuildInput{Mode: model.Mode("weird")})
		assert.Contains(t, prompt, "Response mode: general conversation.")
	})

	t.Run("carries today's date", func(t *testing.T) {
		prompt := builder.Build(service.BuildInput{Mode: model.ModeGeneral})
		assert.Contains(t, prompt, time.Now().Format("2006-01-02"))
	})

	t.Run("mode selects its block", func(t *testing.T) {
		research := builder.Build(service.BuildInput{Mode: model.ModeResearch})
		assert.Contains(t, research, "Response mode: research.")
		assert.NotContains(t, research, "Response mode: coding.")
	})
}
