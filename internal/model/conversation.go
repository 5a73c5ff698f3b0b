// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation represents a chat session as an append-only sequence of
// messages in chronological order. Existing entries are never reordered or
// removed; Reset replaces the whole conversation with a fresh one.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Model     string     `json:"model"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewConversation creates an empty conversation.
func NewConversation(modelName string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		Model:     modelName,
		Messages:  make([]*Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSeededConversation creates a conversation that opens with an assistant
// greeting. The greeting participates in the transcript like any other
// message and is sent to the API on subsequent turns.
func NewSeededConversation(modelName, greeting string) *Conversation {
	conv := NewConversation(modelName)
	if greeting != "" {
		conv.Append(NewAssistantMessage(greeting))
	}
	return conv
}

// =============================================================================
// CONVERSATION METHODS
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()

	// Auto-generate title from first user message
	if c.Title == "" && msg.Role == RoleUser {
		c.Title = util.TruncateRunes(util.Singleline(msg.WireContent()), 50)
	}
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// FindMessage returns the message with the given ID, or nil.
func (c *Conversation) FindMessage(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// SetStatus updates the turn status of the message with the given ID.
// Returns false if no such message exists.
func (c *Conversation) SetStatus(id string, status TurnStatus) bool {
	msg := c.FindMessage(id)
	if msg == nil {
		return false
	}
	msg.Status = status
	c.UpdatedAt = time.Now()
	return true
}

// HasPending returns true if any user turn is still awaiting a reply.
func (c *Conversation) HasPending() bool {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Status == StatusPending {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the message slice safe to iterate while the
// conversation keeps growing. Message pointers are shared; entries are not.
func (c *Conversation) Snapshot() []*Message {
	out := make([]*Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// DisplayTitle returns the title, or a placeholder if none is set.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// =============================================================================
// WIRE FORMAT CONVERSION
// =============================================================================

// ToWireMessages converts the conversation to the chat-completion wire
// format. The result has exactly one entry per message, in the same order;
// content passes through verbatim (multi-part messages are joined with
// newlines, empty messages stay empty).
func (c *Conversation) ToWireMessages() []api.ChatMessage {
	messages := make([]api.ChatMessage, len(c.Messages))
	for i, msg := range c.Messages {
		messages[i] = api.ChatMessage{
			Role:    wireRole(msg.Role),
			Content: msg.WireContent(),
		}
	}
	return messages
}

// wireRole maps an internal role to its API name.
func wireRole(r Role) string {
	switch r {
	case RoleUser:
		return api.RoleUser
	case RoleAssistant:
		return api.RoleAssistant
	case RoleSystem:
		return api.RoleSystem
	default:
		return string(r)
	}
}

// generateConversationID creates a unique conversation ID.
// RELIABILITY: Random IDs keep saved transcripts from colliding on disk;
// the store keys files by ID, so a duplicate would overwrite silently.
func generateConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}
