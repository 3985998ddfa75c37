package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds an ordered message sequence with its metadata.
// Message order is insertion order and is preserved verbatim by every
// consumer; nothing here reorders or sorts.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, in insertion order.
	Messages []*Message `json:"messages"`

	// Optional origin information.
	Model string `json:"model,omitempty"`
	Mode  string `json:"mode,omitempty"`

	// Extras carries small free-form metadata (target language, scores, ...)
	// that renderers may surface or ignore.
	Extras map[string]string `json:"extras,omitempty"`
}

// NewConversation creates a new conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// NewConversationWithTitle creates a new conversation with a title.
func NewConversationWithTitle(title string) *Conversation {
	conv := NewConversation()
	conv.Title = title
	return conv
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends an assistant message.
func (c *Conversation) AddAssistantMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and appends a system message.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.AddMessage(msg)
	return msg
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Validate checks every message in order. On failure it returns the index of
// the offending message along with the error; on success the index is -1.
func (c *Conversation) Validate() (int, error) {
	for i, msg := range c.Messages {
		if err := msg.Validate(); err != nil {
			return i, fmt.Errorf("message %d: %w", i, err)
		}
	}
	return -1, nil
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = strings.ReplaceAll(msg.Preview(50), "\n", " ")
			return
		}
	}
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "Untitled Conversation"
}

// =============================================================================
// METADATA
// =============================================================================

// ConversationMeta holds lightweight metadata for listing.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview"`
}

// Preview returns a short preview from the first user message.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return strings.ReplaceAll(msg.Preview(80), "\n", " ")
		}
	}
	if len(c.Messages) > 0 {
		return strings.ReplaceAll(c.Messages[0].Preview(80), "\n", " ")
	}
	return ""
}

// GetMeta returns metadata about the conversation.
func (c *Conversation) GetMeta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Title:        c.GetTitle(),
		Model:        c.Model,
		Mode:         c.Mode,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Preview:      c.Preview(),
	}
}

// Localized returns a deep copy with every timestamp converted to local
// time. The receiver is left untouched; the instants are unchanged, only
// the zone they render in.
func (c *Conversation) Localized() *Conversation {
	clone := c.Clone()
	clone.CreatedAt = clone.CreatedAt.Local()
	clone.UpdatedAt = clone.UpdatedAt.Local()
	for _, msg := range clone.Messages {
		msg.Timestamp = msg.Timestamp.Local()
	}
	return clone
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Model:     c.Model,
		Mode:      c.Mode,
		Messages:  make([]*Message, len(c.Messages)),
	}
	if c.Extras != nil {
		clone.Extras = make(map[string]string, len(c.Extras))
		for k, v := range c.Extras {
			clone.Extras[k] = v
		}
	}
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}
