package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// ConversationStore is a chat.Store backed by the chat_turns table. Every
// session key holds an independent transcript.
type ConversationStore struct {
	db  *sql.DB
	key string
}

var _ chat.Store = (*ConversationStore)(nil)

// Conversation returns the transcript stored under key.
func (s *SQLiteStore) Conversation(key string) *ConversationStore {
	return &ConversationStore{db: s.db, key: key}
}

// Key returns the session key.
func (c *ConversationStore) Key() string { return c.key }

// Load returns the turns in order.
func (c *ConversationStore) Load(ctx context.Context) (core.Conversation, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT role, content FROM chat_turns WHERE session_key = ? ORDER BY seq`,
		c.key,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %q: %w", c.key, err)
	}
	defer func() { _ = rows.Close() }()

	conv := core.Conversation{}
	for rows.Next() {
		var turn core.Turn
		if err := rows.Scan(&turn.Role, &turn.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		conv = append(conv, turn)
	}
	return conv, rows.Err()
}

// Append adds turn after the last stored one.
func (c *ConversationStore) Append(ctx context.Context, turn core.Turn) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		var next int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_turns WHERE session_key = ?`,
			c.key,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to read sequence: %w", err)
		}
		return insertTurn(ctx, tx, c.key, next, turn)
	})
}

// Replace overwrites the transcript with conv.
func (c *ConversationStore) Replace(ctx context.Context, conv core.Conversation) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_turns WHERE session_key = ?`, c.key); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		for i, turn := range conv {
			if err := insertTurn(ctx, tx, c.key, int64(i+1), turn); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *ConversationStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if c.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertTurn(ctx context.Context, tx *sql.Tx, key string, seq int64, turn core.Turn) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO chat_turns (id, session_key, seq, role, content) VALUES (?, ?, ?, ?, ?)`,
		generateID(), key, seq, string(turn.Role), turn.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat turn: %w", err)
	}
	return nil
}

// SessionKeys lists every key with a stored transcript.
func (s *SQLiteStore) SessionKeys(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_key FROM chat_turns ORDER BY session_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list session keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan session key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
