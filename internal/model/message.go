// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/skiff-tui/internal/util"
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
// TURN STATUS
// =============================================================================

// TurnStatus tracks the request lifecycle of a user turn.
//
// A user message is appended optimistically before its request is dispatched,
// so the status records whether the turn ever received an answer. Assistant
// and system messages carry StatusNone.
type TurnStatus int

const (
	StatusNone     TurnStatus = iota // Not a user turn
	StatusPending                    // Request in flight
	StatusAnswered                   // Assistant reply received
	StatusFailed                     // Request failed; eligible for resend
)

// String returns a short label for the status.
func (s TurnStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAnswered:
		return "answered"
	case StatusFailed:
		return "failed"
	default:
		return "none"
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are immutable once created except for their turn status,
// which the dispatcher advances as the request completes.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content. Parts holds additional segments for multi-part messages;
	// the wire conversion joins all segments with newlines.
	Content string   `json:"content"`
	Parts   []string `json:"parts,omitempty"`

	// Turn lifecycle (user messages only)
	Status TurnStatus `json:"status,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message with a pending turn status.
func NewUserMessage(content string) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Status = StatusPending
	return msg
}

// NewUserMessageParts creates a multi-part user message. The first part is
// the primary content; the rest are carried separately and joined with
// newlines when converted to the wire format.
func NewUserMessageParts(parts ...string) *Message {
	if len(parts) == 0 {
		return NewUserMessage("")
	}
	msg := NewUserMessage(parts[0])
	if len(parts) > 1 {
		msg.Parts = parts[1:]
	}
	return msg
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// WireContent returns the full text of the message with all parts joined
// by newline separators.
func (m *Message) WireContent() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	segments := make([]string, 0, len(m.Parts)+1)
	segments = append(segments, m.Content)
	segments = append(segments, m.Parts...)
	return strings.Join(segments, "\n")
}

// Preview returns a one-line truncated preview of the message content.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.Singleline(m.WireContent()), maxLen)
}

// IsEmpty returns true if the message has no content in any part.
func (m *Message) IsEmpty() bool {
	return len(m.WireContent()) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
