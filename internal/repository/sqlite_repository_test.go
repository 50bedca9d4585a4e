package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
)

func setupRepo(t *testing.T) (repository.Repository, sqlmock.Sqlmock, *sql.DB) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSQLiteRepository(db), mockDB, db
}

func TestSQLiteRepository_GetConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - with summary", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		summaryJSON := `{"project_context":"cli tool","decisions":[],"user_preferences":[],"key_information":[],"current_state":"wip"}`
		rows := sqlmock.NewRows([]string{"id", "title", "mode", "summary", "created_at", "updated_at"}).
			AddRow("c1", "Title", "coding", summaryJSON, time.Now(), time.Now())
		mockDB.ExpectQuery("SELECT id, title, mode, summary, created_at, updated_at FROM conversations WHERE id = \\?").
			WithArgs("c1").WillReturnRows(rows)

		conv, err := repo.GetConversation(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", conv.ID)
		require.NotNil(t, conv.Summary)
		assert.Equal(t, "wip", conv.Summary.CurrentState)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - null summary", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		rows := sqlmock.NewRows([]string{"id", "title", "mode", "summary", "created_at", "updated_at"}).
			AddRow("c1", "Title", "general", nil, time.Now(), time.Now())
		mockDB.ExpectQuery("SELECT id, title, mode, summary").WithArgs("c1").WillReturnRows(rows)

		conv, err := repo.GetConversation(ctx, "c1")
		require.NoError(t, err)
		assert.Nil(t, conv.Summary)
	})

	t.Run("Failure - not found", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectQuery("SELECT id, title, mode, summary").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetConversation(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSQLiteRepository_UpdateConversationTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectExec("UPDATE conversations SET title = \\?, updated_at = \\? WHERE id = \\?").
			WithArgs("New", sqlmock.AnyArg(), "c1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateConversationTitle(ctx, "c1", "New"))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - no rows affected", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectExec("UPDATE conversations SET title").
			WithArgs("New", sqlmock.AnyArg(), "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateConversationTitle(ctx, "ghost", "New")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSQLiteRepository_AddMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - insert and touch run in one transaction", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		msg := &model.Message{
			ID:      "m1",
			Role:    "user",
			Content: "hello",
			Parts:   []model.Part{model.NewTextPart("hello")},
			CreatedAt: time.Now().UTC(),
		}

		partsJSON, err := json.Marshal(msg.Parts)
		require.NoError(t, err)

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO messages").
			WithArgs("m1", "c1", "user", "hello", string(partsJSON), nil, msg.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mockDB.ExpectExec("UPDATE conversations SET updated_at").
			WithArgs(sqlmock.AnyArg(), "c1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mockDB.ExpectCommit()

		require.NoError(t, repo.AddMessage(ctx, "c1", msg))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - insert error rolls back", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectBegin()
		mockDB.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("constraint failed"))
		mockDB.ExpectRollback()

		err := repo.AddMessage(ctx, "c1", &model.Message{ID: "m1", Role: "user"})
		assert.ErrorContains(t, err, "could not insert message")
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSQLiteRepository_GetMessages(t *testing.T) {
	ctx := context.Background()
	repo, mockDB, _ := setupRepo(t)

	partsJSON := `[{"type":"text","text":"hi"},{"type":"tool-call","tool_call":{"tool_call_id":"tc1","tool_name":"web_search","signature":"sig"}}]`
	usageJSON := `{"input_tokens":5,"output_tokens":3,"total_tokens":8}`
	rows := sqlmock.NewRows([]string{"id", "role", "content", "parts", "usage", "created_at"}).
		AddRow("m1", "user", "hi", partsJSON, nil, time.Now()).
		AddRow("m2", "assistant", "hello", nil, usageJSON, time.Now())
	mockDB.ExpectQuery("SELECT id, role, content, parts, usage, created_at").
		WithArgs("c1").WillReturnRows(rows)

	messages, err := repo.GetMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Stored parts come back and re-marshal to the exact stored bytes.
	out, err := json.Marshal(messages[0].Parts)
	require.NoError(t, err)
	assert.Equal(t, partsJSON, string(out))

	require.NotNil(t, messages[1].Usage)
	assert.Equal(t, 8, messages[1].Usage.TotalTokens)
}

func TestSQLiteRepository_GetPreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		rows := sqlmock.NewRows([]string{"id", "language", "coding_style", "preferred_stack", "custom_instructions", "updated_at"}).
			AddRow(repository.PreferencesRowID, "Japanese", "", `["Go","SQLite"]`, "", time.Now())
		mockDB.ExpectQuery("SELECT id, language, coding_style, preferred_stack").
			WithArgs(repository.PreferencesRowID).WillReturnRows(rows)

		prefs, err := repo.GetPreferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Japanese", prefs.Language)
		assert.Equal(t, []string{"Go", "SQLite"}, prefs.PreferredStack)
	})

	t.Run("missing row creates defaults", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectQuery("SELECT id, language, coding_style, preferred_stack").
			WithArgs(repository.PreferencesRowID).WillReturnError(sql.ErrNoRows)
		mockDB.ExpectExec("INSERT INTO preferences").
			WithArgs(repository.PreferencesRowID, "", "", "[]", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		prefs, err := repo.GetPreferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, repository.PreferencesRowID, prefs.ID)
		assert.Empty(t, prefs.PreferredStack)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSQLiteRepository_LastActiveConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectExec("INSERT INTO app_state").
			WithArgs("last_active_conversation", "c1").
			WillReturnResult(sqlmock.NewResult(1, 1))
		require.NoError(t, repo.SetLastActiveConversation(ctx, "c1"))

		rows := sqlmock.NewRows([]string{"value"}).AddRow("c1")
		mockDB.ExpectQuery("SELECT value FROM app_state WHERE key = \\?").
			WithArgs("last_active_conversation").WillReturnRows(rows)

		id, err := repo.GetLastActiveConversation(ctx)
		require.NoError(t, err)
		assert.Equal(t, "c1", id)
	})

	t.Run("nothing recorded", func(t *testing.T) {
		repo, mockDB, _ := setupRepo(t)

		mockDB.ExpectQuery("SELECT value FROM app_state").
			WithArgs("last_active_conversation").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetLastActiveConversation(ctx)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
