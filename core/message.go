package core

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks messages authored by the requesting user.
	RoleUser Role = "user"
	// RoleAgent marks messages authored by an agent, including model fallbacks.
	RoleAgent Role = "agent"
	// RoleTool marks messages that record the rendered outcome of a tool call.
	RoleTool Role = "tool"
)

// MetaTool is the metadata key naming the tool that produced a tool message.
const MetaTool = "tool"

// MetaImportance is the metadata key carrying an importance hint ("high")
// consulted by importance-based compaction.
const MetaImportance = "importance"

// MetaType is the metadata key categorizing synthetic messages, e.g. the
// "summary" messages emitted by summarizing compaction.
const MetaType = "type"

// Message is a single immutable record in a session's conversation log.
//
// A message is created once per turn and never mutated afterwards; it is
// removed only by compaction or session deletion. Seq is assigned by the
// session that appends the message and is strictly increasing within that
// session, making insertion order checkable independent of clock resolution.
type Message struct {
	ID        string            `json:"id"`
	Seq       int               `json:"seq"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewID generates a unique identifier string (UUID v4).
func NewID() string {
	return uuid.NewString()
}

// NewMessage creates a message with a fresh ID and the current timestamp.
// Seq stays zero until a session log appends the message.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAgentMessage creates an agent-authored message.
func NewAgentMessage(content string) Message {
	return NewMessage(RoleAgent, content)
}

// NewToolMessage creates a tool message recording the rendered result of the
// named tool.
func NewToolMessage(toolName, content string) Message {
	m := NewMessage(RoleTool, content)
	m.Metadata = map[string]string{MetaTool: toolName}

	return m
}

// WithMetadata returns a copy of the message with the given metadata entry
// added. The original message is left untouched.
func (m Message) WithMetadata(key, value string) Message {
	md := make(map[string]string, len(m.Metadata)+1)
	maps.Copy(md, m.Metadata)
	md[key] = value

	c := m
	c.Metadata = md

	return c
}

// Clone returns a deep copy of the message, including its metadata map.
func (m Message) Clone() Message {
	c := m
	if m.Metadata != nil {
		c.Metadata = make(map[string]string, len(m.Metadata))
		maps.Copy(c.Metadata, m.Metadata)
	}

	return c
}

// Tool returns the tool name recorded on a tool message, or "" for other roles.
func (m Message) Tool() string {
	return m.Metadata[MetaTool]
}
