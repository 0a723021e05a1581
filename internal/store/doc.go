// Package store provides persistent storage for the chat service using SQLite.
//
// # Architecture
//
// The Store interface covers conversation persistence, the read-side
// projections, and customer profiles. SQLiteStore is the only production
// implementation; tests run it against a file in t.TempDir().
//
// # Data Models
//
//   - Conversation: the durable per-customer thread, at most one per user id,
//     created lazily on first contact and never deleted
//   - Message: one entry in a conversation's append-only log
//   - UserProfile: customer record the inbox joins display names from
//   - InboxEntry: one row of the admin inbox projection
//
// # Concurrency
//
// AppendMessage runs conversation creation and the message insert in a single
// transaction, with a UNIQUE constraint on the user id as the backstop:
// concurrent first-contact sends can never produce two conversations.
// Message order is the insertion sequence, which matches submission order.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on open.
//
// # Error Handling
//
// ErrNotFound is the only sentinel: a requested entity does not exist.
// Read projections prefer empty results over errors — an absent conversation
// yields an empty thread, an unknown customer the fallback display name.
package store
