package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prism-ai/backend/internal/model"
)

// PreferencesRowID is the well-known id of the singleton preferences row for
// the default local user.
const PreferencesRowID = "local-user"

const lastActiveKey = "last_active_conversation"

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	query := "INSERT INTO conversations (id, title, mode, summary, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	summary, err := marshalNullable(conv.Summary)
	if err != nil {
		return fmt.Errorf("could not marshal summary: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, conv.ID, conv.Title, conv.Mode, summary, conv.CreatedAt, conv.UpdatedAt)
	return err
}

func (r *sqliteRepository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	query := "SELECT id, title, mode, summary, created_at, updated_at FROM conversations WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, conversationID)

	var conv model.Conversation
	var summary sql.NullString
	err := row.Scan(&conv.ID, &conv.Title, &conv.Mode, &summary, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if summary.Valid {
		var s model.ConversationSummary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("could not unmarshal summary: %w", err)
		}
		conv.Summary = &s
	}
	return &conv, nil
}

func (r *sqliteRepository) GetConversations(ctx context.Context) ([]*model.Conversation, error) {
	query := "SELECT id, title, mode, created_at, updated_at FROM conversations ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Mode, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, &conv)
	}
	return convs, rows.Err()
}

func (r *sqliteRepository) UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error {
	query := "UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, newTitle, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) UpdateConversationMode(ctx context.Context, conversationID string, mode model.Mode) error {
	query := "UPDATE conversations SET mode = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, mode, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) UpdateConversationSummary(ctx context.Context, conversationID string, summary *model.ConversationSummary) error {
	val, err := marshalNullable(summary)
	if err != nil {
		return fmt.Errorf("could not marshal summary: %w", err)
	}
	query := "UPDATE conversations SET summary = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, val, time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	query := "DELETE FROM conversations WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, conversationID)
	return err
}

// AddMessage inserts a message and bumps the conversation timestamp in one
// transaction. Parts are stored as the exact JSON they marshal to, so a
// reload yields byte-identical parts.
func (r *sqliteRepository) AddMessage(ctx context.Context, conversationID string, message *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var parts sql.NullString
	if len(message.Parts) > 0 {
		b, err := json.Marshal(message.Parts)
		if err != nil {
			return fmt.Errorf("could not marshal parts: %w", err)
		}
		parts = sql.NullString{String: string(b), Valid: true}
	}
	var usage sql.NullString
	if message.Usage != nil {
		b, err := json.Marshal(message.Usage)
		if err != nil {
			return fmt.Errorf("could not marshal usage: %w", err)
		}
		usage = sql.NullString{String: string(b), Valid: true}
	}

	insertQuery := `
		INSERT INTO messages (id, conversation_id, role, content, parts, usage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		message.ID,
		conversationID,
		message.Role,
		message.Content,
		parts,
		usage,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	touchQuery := "UPDATE conversations SET updated_at = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, touchQuery, time.Now().UTC(), conversationID); err != nil {
		return fmt.Errorf("could not update conversation timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := `
		SELECT id, role, content, parts, usage, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var parts sql.NullString
		var usage sql.NullString

		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &parts, &usage, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if parts.Valid {
			if err := json.Unmarshal([]byte(parts.String), &msg.Parts); err != nil {
				return nil, fmt.Errorf("could not unmarshal parts for message %s: %w", msg.ID, err)
			}
		}
		if usage.Valid {
			var u model.TokenUsage
			if err := json.Unmarshal([]byte(usage.String), &u); err != nil {
				return nil, fmt.Errorf("could not unmarshal usage for message %s: %w", msg.ID, err)
			}
			msg.Usage = &u
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteRepository) GetPreferences(ctx context.Context) (*model.UserPreferences, error) {
	query := "SELECT id, language, coding_style, preferred_stack, custom_instructions, updated_at FROM preferences WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, PreferencesRowID)

	var prefs model.UserPreferences
	var stack string
	err := row.Scan(&prefs.ID, &prefs.Language, &prefs.CodingStyle, &stack, &prefs.CustomInstructions, &prefs.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.createDefaultPreferences(ctx)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(stack), &prefs.PreferredStack); err != nil {
		return nil, fmt.Errorf("could not unmarshal preferred stack: %w", err)
	}
	return &prefs, nil
}

func (r *sqliteRepository) createDefaultPreferences(ctx context.Context) (*model.UserPreferences, error) {
	prefs := &model.UserPreferences{
		ID:             PreferencesRowID,
		PreferredStack: []string{},
		UpdatedAt:      time.Now().UTC(),
	}
	if err := r.SavePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("could not create default preferences: %w", err)
	}
	return prefs, nil
}

func (r *sqliteRepository) SavePreferences(ctx context.Context, prefs *model.UserPreferences) error {
	stack, err := json.Marshal(prefs.PreferredStack)
	if err != nil {
		return fmt.Errorf("could not marshal preferred stack: %w", err)
	}
	query := `
		INSERT INTO preferences (id, language, coding_style, preferred_stack, custom_instructions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			language = excluded.language,
			coding_style = excluded.coding_style,
			preferred_stack = excluded.preferred_stack,
			custom_instructions = excluded.custom_instructions,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		prefs.ID, prefs.Language, prefs.CodingStyle, string(stack), prefs.CustomInstructions, prefs.UpdatedAt)
	return err
}

func (r *sqliteRepository) GetLastActiveConversation(ctx context.Context) (string, error) {
	query := "SELECT value FROM app_state WHERE key = ?"
	var id string
	err := r.db.QueryRowContext(ctx, query, lastActiveKey).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (r *sqliteRepository) SetLastActiveConversation(ctx context.Context, conversationID string) error {
	query := "INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	_, err := r.db.ExecContext(ctx, query, lastActiveKey, conversationID)
	return err
}

func marshalNullable(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	switch s := v.(type) {
	case *model.ConversationSummary:
		if s == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
