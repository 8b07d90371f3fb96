package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/attachehq/attache/core"
)

// InMemorySessionStoreOptions configures an InMemorySessionStore.
type InMemorySessionStoreOptions struct {
	// CheckpointDir enables JSON checkpoints under this directory when
	// set. One file per session, written on Checkpoint.
	CheckpointDir string
}

// InMemorySessionStore keeps sessions in a process-local map. It is safe for
// concurrent use; the store lock only guards the map, appends serialize on
// the individual session. Every returned session is a deep copy, so callers
// never observe concurrent mutation.
type InMemorySessionStore struct {
	mu            sync.RWMutex
	sessions      map[string]*core.Session
	checkpointDir string
}

var _ core.SessionStore = (*InMemorySessionStore)(nil)

// NewInMemorySessionStore constructs an empty session store.
func NewInMemorySessionStore(optFns ...func(o *InMemorySessionStoreOptions)) *InMemorySessionStore {
	opts := InMemorySessionStoreOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemorySessionStore{
		sessions:      make(map[string]*core.Session),
		checkpointDir: opts.CheckpointDir,
	}
}

// Create registers a new empty session. An empty id gets a generated one.
func (s *InMemorySessionStore) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if _, exists := s.sessions[sessionID]; exists {
			return nil, fmt.Errorf("session already exists: %s", sessionID)
		}
	}

	sess := core.NewSession(sessionID)
	s.sessions[sess.ID] = sess

	return sess.Clone(), nil
}

// Get returns a deep copy of the session.
func (s *InMemorySessionStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}

	return sess.Clone(), nil
}

// Append adds a message to the session log, creating the session lazily.
func (s *InMemorySessionStore) Append(sessionID string, msg core.Message) error {
	sess := s.getOrCreate(sessionID)
	sess.AddMessage(msg)

	return nil
}

// Replace swaps the session log for the given messages in the given order.
func (s *InMemorySessionStore) Replace(sessionID string, msgs []core.Message) error {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}

	sess.SetMessages(msgs)

	return nil
}

// List returns all known session IDs, sorted.
func (s *InMemorySessionStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Delete removes the session.
func (s *InMemorySessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}

	delete(s.sessions, sessionID)

	return nil
}

// getOrCreate returns the live session, allocating it when missing. The store
// lock is held only for the map access.
func (s *InMemorySessionStore) getOrCreate(sessionID string) *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = core.NewSession(sessionID)
		s.sessions[sess.ID] = sess
	}

	return sess
}

// sessionSnapshot is the checkpoint file format.
type sessionSnapshot struct {
	ID       string            `json:"id"`
	Messages []core.Message    `json:"messages"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Checkpoint writes the session to <dir>/<id>.json via a temp file rename,
// so a crash mid-write never leaves a truncated checkpoint behind.
func (s *InMemorySessionStore) Checkpoint(sessionID string) error {
	if s.checkpointDir == "" {
		return fmt.Errorf("no checkpoint directory configured")
	}

	path, err := s.checkpointPath(sessionID)
	if err != nil {
		return err
	}

	sess, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	snap := sessionSnapshot{
		ID:       sess.ID,
		Messages: sess.Messages,
		Created:  sess.Created,
		Updated:  sess.Updated,
		Metadata: sess.Metadata,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.checkpointDir, 0o700); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Restore loads a checkpointed session back into the store, replacing any
// in-memory copy, and returns a clone of it.
func (s *InMemorySessionStore) Restore(sessionID string) (*core.Session, error) {
	if s.checkpointDir == "" {
		return nil, fmt.Errorf("no checkpoint directory configured")
	}

	path, err := s.checkpointPath(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}

	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt checkpoint for %s: %w", sessionID, err)
	}

	sess := core.NewSession(snap.ID)
	sess.SetMessages(snap.Messages)
	sess.Created = snap.Created
	sess.Updated = snap.Updated
	if snap.Metadata != nil {
		sess.Metadata = snap.Metadata
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.Clone(), nil
}

// RestoreAll loads every checkpoint in the directory, returning the restored
// session IDs. Missing directory means nothing to restore.
func (s *InMemorySessionStore) RestoreAll() ([]string, error) {
	if s.checkpointDir == "" {
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(s.checkpointDir, "*.json"))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), ".json")
		if _, err := s.Restore(id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}

// checkpointPath validates the id and maps it to its checkpoint file.
// Separators are rejected so a crafted session id cannot escape the
// checkpoint directory.
func (s *InMemorySessionStore) checkpointPath(sessionID string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("invalid session id: %q", sessionID)
	}

	return filepath.Join(s.checkpointDir, sessionID+".json"), nil
}
