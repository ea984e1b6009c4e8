// Package store persists completed question/answer exchanges to a
// local SQLite database, grouped by assistant run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Exchange is one transcribed question and the spoken reply.
type Exchange struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Store writes exchanges for a single conversation, created when the
// process starts.
type Store struct {
	db             *sql.DB
	conversationID string
	logger         *slog.Logger
}

// Open opens (or creates) the database at path and starts a new
// conversation row for this run.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createConversationsTable := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		start_time DATETIME
	);`

	createExchangesTable := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT,
		question TEXT,
		answer TEXT,
		timestamp DATETIME,
		FOREIGN KEY(conversation_id) REFERENCES conversations(id)
	);`

	if _, err := db.Exec(createConversationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create conversations table: %w", err)
	}
	if _, err := db.Exec(createExchangesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create exchanges table: %w", err)
	}

	conversationID := fmt.Sprintf("conversation_%d", time.Now().UnixNano())
	_, err = db.Exec("INSERT INTO conversations (id, start_time) VALUES (?, ?)",
		conversationID, time.Now())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	logger.Info("opened transcript store", "path", path, "conversation_id", conversationID)
	return &Store{db: db, conversationID: conversationID, logger: logger}, nil
}

// SaveExchange records one completed exchange in the current
// conversation.
func (s *Store) SaveExchange(ctx context.Context, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exchanges (conversation_id, question, answer, timestamp) VALUES (?, ?, ?, ?)",
		s.conversationID, question, answer, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}

	s.logger.Debug("saved exchange", "conversation_id", s.conversationID)
	return nil
}

// LoadConversation returns every exchange saved under conversationID,
// oldest first.
func (s *Store) LoadConversation(ctx context.Context, conversationID string) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT question, answer, timestamp FROM exchanges WHERE conversation_id = ? ORDER BY id",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.Question, &e.Answer, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

// ConversationID returns the identifier of the conversation this run
// writes to.
func (s *Store) ConversationID() string {
	return s.conversationID
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
