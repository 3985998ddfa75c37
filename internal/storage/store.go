// Package storage provides the SQLite-backed conversation archive.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"chatexport/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	// Use errors.Is(err, ErrConversationNotFound) to check for this error.
	ErrConversationNotFound = errors.New("conversation not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	model      TEXT NOT NULL DEFAULT '',
	mode       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	extras     TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT    NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	id              TEXT    NOT NULL,
	role            TEXT    NOT NULL,
	content         TEXT    NOT NULL,
	timestamp       TEXT    NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
`

// timeLayout is how timestamps are stored in the database.
const timeLayout = time.RFC3339Nano

// =============================================================================
// STORE
// =============================================================================

// Store handles conversation persistence in a single SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite supports a single writer; serialize access.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its ID. Messages are replaced
// wholesale in insertion order; an existing conversation with the same ID
// is updated.
func (s *Store) Save(conv *model.Conversation) (string, error) {
	if conv == nil {
		return "", errors.New("conversation is nil")
	}

	if conv.ID == "" {
		fresh := model.NewConversation()
		conv.ID = fresh.ID
	}
	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	extras, err := json.Marshal(conv.Extras)
	if err != nil {
		return "", fmt.Errorf("marshal extras: %w", err)
	}
	if conv.Extras == nil {
		extras = []byte("{}")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, model, mode, created_at, updated_at, extras)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			model = excluded.model,
			mode = excluded.mode,
			updated_at = excluded.updated_at,
			extras = excluded.extras`,
		conv.ID, conv.GetTitle(), conv.Model, conv.Mode,
		conv.CreatedAt.Format(timeLayout), conv.UpdatedAt.Format(timeLayout), string(extras))
	if err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return "", fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (conversation_id, seq, id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		if _, err := stmt.Exec(conv.ID, i, msg.ID, msg.Role.String(), msg.Content,
			msg.Timestamp.Format(timeLayout)); err != nil {
			return "", fmt.Errorf("save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return conv.ID, nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID, messages in insertion order.
func (s *Store) Load(id string) (*model.Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, title, model, mode, created_at, updated_at, extras
		FROM conversations WHERE id = ?`, id)

	var conv model.Conversation
	var createdAt, updatedAt, extras string
	err := row.Scan(&conv.ID, &conv.Title, &conv.Model, &conv.Mode, &createdAt, &updatedAt, &extras)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	if conv.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if conv.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if extras != "" && extras != "{}" {
		if err := json.Unmarshal([]byte(extras), &conv.Extras); err != nil {
			return nil, fmt.Errorf("parse extras: %w", err)
		}
	}

	rows, err := s.db.Query(`
		SELECT id, role, content, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role, ts string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = model.Role(role)
		if msg.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse message timestamp: %w", err)
		}
		conv.Messages = append(conv.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return &conv, nil
}

// LoadByIndex loads a conversation by its position in the list
// (0 = most recently updated).
func (s *Store) LoadByIndex(index int) (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}
	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

const metaQuery = `
	SELECT c.id, c.title, c.model, c.mode, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
		COALESCE((SELECT m.content FROM messages m
			WHERE m.conversation_id = c.id AND m.role = 'user'
			ORDER BY m.seq LIMIT 1), '')
	FROM conversations c`

// List returns metadata for all conversations, most recently updated first.
func (s *Store) List() ([]model.ConversationMeta, error) {
	return s.queryMetas(metaQuery+` ORDER BY c.updated_at DESC`)
}

// Search finds conversations whose title or message content contains the
// query string (case-insensitive). LIKE metacharacters in the query are
// escaped so "100%" matches literally rather than as a wildcard.
func (s *Store) Search(query string) ([]model.ConversationMeta, error) {
	if query == "" {
		return s.List()
	}
	pattern := "%" + escapeLike(query) + "%"
	return s.queryMetas(metaQuery+`
		WHERE c.title LIKE ? ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM messages m
				WHERE m.conversation_id = c.id
				  AND m.content LIKE ? ESCAPE '\')
		ORDER BY c.updated_at DESC`, pattern, pattern)
}

// queryMetas runs a metadata query and scans the results.
func (s *Store) queryMetas(query string, args ...any) ([]model.ConversationMeta, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var metas []model.ConversationMeta
	for rows.Next() {
		var meta model.ConversationMeta
		var createdAt, updatedAt, preview string
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Model, &meta.Mode,
			&createdAt, &updatedAt, &meta.MessageCount, &preview); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		if meta.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if meta.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		meta.Preview = previewLine(preview)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Clear removes all conversations.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters so user queries match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// previewLine flattens and truncates preview text for listing.
func previewLine(s string) string {
	flat := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		flat = append(flat, r)
		if len(flat) >= 80 {
			break
		}
	}
	return string(flat)
}
