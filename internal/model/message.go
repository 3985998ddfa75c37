// Package model contains the data structures for conversations and messages.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidRole indicates a message role outside the recognized set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrMissingTimestamp indicates a message without a timestamp.
	ErrMissingTimestamp = errors.New("missing timestamp")
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is one of the recognized values.
// An unrecognized role is a data-integrity error, never coerced.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are immutable once appended to a conversation; derived metrics
// (character and word counts) are recomputed on demand, never stored.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID and the current time.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        "msg_" + uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Validate checks the message for structural problems.
func (m *Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	if m.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// CharacterCount returns the number of characters in the content.
// Counted in runes so multi-byte text is not over-reported.
func (m *Message) CharacterCount() int {
	return utf8.RuneCountInString(m.Content)
}

// WordCount returns the number of whitespace-separated words in the content.
func (m *Message) WordCount() int {
	return len(strings.Fields(m.Content))
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}
