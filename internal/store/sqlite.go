// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides conversation/message/profile persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer: the driver reports SQLITE_BUSY on overlapping write
	// transactions, so serialize on one pooled connection instead.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// The UNIQUE constraint on conversations.user_id is what makes the
// upsert-or-append in AppendMessage safe under concurrency.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversation_messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			sender_id TEXT NOT NULL,
			sender_role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,

			CHECK (sender_role IN ('user', 'admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON conversation_messages(conversation_id, seq);

		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			created_at TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// AppendMessage records msg in the conversation owned by userID, creating the
// conversation on first contact. Both steps run in one transaction so a
// concurrent first message from the same user cannot create a second
// conversation: the ON CONFLICT clause turns the losing insert into a no-op
// and the message lands in the winner's row.
func (s *SQLiteStore) AppendMessage(ctx context.Context, userID string, msg *Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, uuid.New().String(), userID, msg.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting conversation: %w", err)
	}

	var conversationID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE user_id = ?`, userID,
	).Scan(&conversationID)
	if err != nil {
		return fmt.Errorf("resolving conversation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, sender_id, sender_role, content, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		conversationID,
		msg.SenderID,
		msg.SenderRole,
		msg.Content,
		msg.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing append: %w", err)
	}

	s.logger.Debug("message appended",
		"conversation_id", conversationID,
		"message_id", msg.ID,
		"sender_role", msg.SenderRole)
	return nil
}

// GetConversationByUserID retrieves the conversation whose user participant
// matches userID. Returns ErrNotFound if none exists.
func (s *SQLiteStore) GetConversationByUserID(ctx context.Context, userID string) (*Conversation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM conversations
		WHERE user_id = ?
	`

	var conv Conversation
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&conv.ID,
		&conv.UserID,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	conv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &conv, nil
}

// GetThreadMessages returns the ordered message log for the conversation
// owned by userID. Ordering follows insertion sequence, which matches
// submission order. An absent conversation yields an empty slice, not an
// error.
func (s *SQLiteStore) GetThreadMessages(ctx context.Context, userID string) ([]*Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.sender_role, m.content, m.timestamp
		FROM conversation_messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.user_id = ?
		ORDER BY m.seq
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		var msg Message
		var tsStr string
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.SenderRole, &msg.Content, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}

// ListInbox projects one entry per conversation with its last message preview
// and the customer's display name. Sorted by last-message timestamp
// descending; conversations without messages sort after all timestamped
// ones, ties broken by conversation id for a stable order.
func (s *SQLiteStore) ListInbox(ctx context.Context) ([]*InboxEntry, error) {
	query := `
		SELECT c.id, c.user_id, COALESCE(u.name, ?), m.content, m.timestamp
		FROM conversations c
		LEFT JOIN users u ON u.id = c.user_id
		LEFT JOIN conversation_messages m ON m.seq = (
			SELECT seq FROM conversation_messages
			WHERE conversation_id = c.id
			ORDER BY seq DESC LIMIT 1
		)
	`

	rows, err := s.db.QueryContext(ctx, query, FallbackCustomerName)
	if err != nil {
		return nil, fmt.Errorf("querying inbox: %w", err)
	}
	defer rows.Close()

	entries := make([]*InboxEntry, 0)
	for rows.Next() {
		var entry InboxEntry
		var content, tsStr sql.NullString
		if err := rows.Scan(&entry.ConversationID, &entry.UserID, &entry.CustomerName, &content, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning inbox entry: %w", err)
		}

		if content.Valid {
			entry.LastMessage = content.String
		} else {
			entry.LastMessage = NoMessagesPreview
		}
		if tsStr.Valid {
			ts, err := time.Parse(time.RFC3339Nano, tsStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing last message timestamp: %w", err)
			}
			entry.LastMessageAt = &ts
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inbox: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt == nil:
			return a.ConversationID < b.ConversationID
		case a.LastMessageAt == nil:
			return false
		case b.LastMessageAt == nil:
			return true
		case !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		default:
			return a.ConversationID < b.ConversationID
		}
	})

	return entries, nil
}

// SaveUserProfile inserts or replaces a customer profile.
func (s *SQLiteStore) SaveUserProfile(ctx context.Context, profile *UserProfile) error {
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email
	`,
		profile.ID,
		profile.Name,
		profile.Email,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving user profile: %w", err)
	}

	s.logger.Debug("user profile saved", "user_id", profile.ID)
	return nil
}

// GetUserProfile retrieves a profile by id. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetUserProfile(ctx context.Context, id string) (*UserProfile, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), created_at
		FROM users
		WHERE id = ?
	`

	var profile UserProfile
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user profile: %w", err)
	}

	profile.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &profile, nil
}

// NameForUserID resolves a customer display name, falling back to
// FallbackCustomerName for unknown users.
func (s *SQLiteStore) NameForUserID(ctx context.Context, id string) (string, error) {
	profile, err := s.GetUserProfile(ctx, id)
	if err == ErrNotFound {
		return FallbackCustomerName, nil
	}
	if err != nil {
		return "", err
	}
	return profile.Name, nil
}
