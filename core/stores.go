package core

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by session stores when the requested session
// does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrSummaryNotFound is returned by memory banks when no summary is stored
// under the requested key.
var ErrSummaryNotFound = errors.New("summary not found")

// ErrAgentNotFound is returned on dispatch to an agent name nothing is
// registered under.
var ErrAgentNotFound = errors.New("agent not found")

// SessionStore defines persistence for per-conversation message logs.
//
// Get returns an isolated clone; mutations flow back exclusively through
// Append and Replace so the store's copy stays the single source of truth.
type SessionStore interface {
	// Create registers a new empty session. An empty id is replaced by a
	// generated one. Creating an existing id is an error.
	Create(sessionID string) (*Session, error)

	// Get returns a deep copy of the session or ErrSessionNotFound.
	Get(sessionID string) (*Session, error)

	// Append adds a message to the session log, creating the session lazily
	// when it does not exist yet.
	Append(sessionID string, msg Message) error

	// Replace swaps the session log for the given messages, preserving their
	// order. Used to commit compaction results.
	Replace(sessionID string, msgs []Message) error

	// List returns the IDs of all known sessions.
	List() []string

	// Delete removes the session or returns ErrSessionNotFound.
	Delete(sessionID string) error
}

// Summary is one entry of the long-term memory bank.
type Summary struct {
	Key       string    `json:"key"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemoryBank defines the long-term key-to-summary store surviving across
// sessions. At most one entry exists per key; later writes overwrite.
//
// Operations take a context because backends may sit behind network IO.
type MemoryBank interface {
	// Persist stores the summary under key, overwriting any previous entry.
	Persist(ctx context.Context, key, text string) error

	// Load returns the summary stored under key or ErrSummaryNotFound.
	Load(ctx context.Context, key string) (string, error)

	// Keys returns all stored keys.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes the entry or returns ErrSummaryNotFound.
	Delete(ctx context.Context, key string) error

	// Find returns entries whose key or text contains the query substring
	// (case-insensitive).
	Find(ctx context.Context, query string) ([]Summary, error)
}
