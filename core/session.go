package core

import (
	"maps"
	"sync"
	"time"
)

// Session is the stateful container for one conversation: an ordered message
// log plus bookkeeping timestamps and metadata.
//
// Each session guards its own state with an RWMutex, so concurrent turns
// against the same session serialize on the session, not on the whole store.
// Insertion order is preserved; compaction may drop interior messages but
// never reorders survivors.
type Session struct {
	ID       string
	Messages []Message
	Created  time.Time
	Updated  time.Time
	Metadata map[string]string

	nextSeq int
	mu      sync.RWMutex
}

// NewSession creates an empty session. An empty id is replaced by a generated
// one.
func NewSession(id string) *Session {
	if id == "" {
		id = NewID()
	}

	now := time.Now().UTC()

	return &Session{
		ID:       id,
		Messages: []Message{},
		Created:  now,
		Updated:  now,
		Metadata: map[string]string{},
		nextSeq:  1,
	}
}

// AddMessage appends a message to the log, stamping it with the next sequence
// number (and an ID/timestamp when the caller left them empty). The stamped
// copy is returned; the stored message is never mutated afterwards.
func (s *Session) AddMessage(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = NewID()
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	msg.Seq = s.nextSeq
	s.nextSeq++

	s.Messages = append(s.Messages, msg)
	s.Updated = time.Now().UTC()

	return msg
}

// GetMessages returns a snapshot copy of the full message log in insertion
// order.
func (s *Session) GetMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)

	return msgs
}

// History returns the last n messages in insertion order. n <= 0 returns the
// full log.
func (s *Session) History(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && len(s.Messages) > n {
		start = len(s.Messages) - n
	}

	msgs := make([]Message, len(s.Messages)-start)
	copy(msgs, s.Messages[start:])

	return msgs
}

// Len returns the number of messages currently in the log.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.Messages)
}

// SetMessages replaces the full log with the given messages, re-stamping
// sequence numbers 1..n in the order given. Used by compaction; the caller is
// responsible for preserving survivor order.
func (s *Session) SetMessages(msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.ID == "" {
			m.ID = NewID()
		}

		m.Seq = i + 1
		replaced[i] = m
	}

	s.Messages = replaced
	s.nextSeq = len(replaced) + 1
	s.Updated = time.Now().UTC()
}

// LastActivity returns the Updated timestamp under the session lock.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Updated
}

// Clone returns a deep copy of the session, safe for the caller to inspect
// without holding the session lock.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Session{
		ID:       s.ID,
		Messages: make([]Message, len(s.Messages)),
		Created:  s.Created,
		Updated:  s.Updated,
		Metadata: make(map[string]string, len(s.Metadata)),
		nextSeq:  s.nextSeq,
	}

	for i, m := range s.Messages {
		c.Messages[i] = m.Clone()
	}

	maps.Copy(c.Metadata, s.Metadata)

	return c
}
