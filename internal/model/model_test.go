// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/jeranaias/skiff-tui/internal/api"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "hello")

	if msg.ID == "" {
		t.Error("expected non-empty ID")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("expected ID with msg_ prefix, got %s", msg.ID)
	}
	if msg.Role != RoleUser {
		t.Errorf("expected role user, got %s", msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("expected content 'hello', got %s", msg.Content)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
	if msg.Status != StatusNone {
		t.Errorf("expected StatusNone, got %v", msg.Status)
	}
}

func TestNewUserMessage_StartsPending(t *testing.T) {
	msg := NewUserMessage("hi")
	if msg.Status != StatusPending {
		t.Errorf("expected StatusPending, got %v", msg.Status)
	}
}

func TestMessageIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		msg := NewMessage(RoleUser, "test")
		if seen[msg.ID] {
			t.Fatalf("duplicate ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestWireContent(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
		want string
	}{
		{"single part", NewUserMessage("hello"), "hello"},
		{"empty", NewUserMessage(""), ""},
		{"multi part joined with newlines", NewUserMessageParts("a", "b", "c"), "a\nb\nc"},
		{"empty middle part kept", NewUserMessageParts("a", "", "c"), "a\n\nc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.WireContent(); got != tc.want {
				t.Errorf("WireContent() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("custom"), "custom"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%s) = %s, want %s", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation("gpt-4o-mini")

	if conv.ID == "" {
		t.Error("expected non-empty ID")
	}
	if conv.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", conv.Model)
	}
	if !conv.IsEmpty() {
		t.Error("expected empty conversation")
	}
}

func TestConversationIDUniqueness(t *testing.T) {
	// Saved transcripts are keyed by ID on disk, so conversations created
	// back to back must never share one.
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		conv := NewConversation("m")
		if seen[conv.ID] {
			t.Fatalf("duplicate conversation ID generated: %s", conv.ID)
		}
		seen[conv.ID] = true
	}
}

func TestNewSeededConversation(t *testing.T) {
	conv := NewSeededConversation("m", "Hi! How can I help?")

	if conv.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", conv.Len())
	}
	first := conv.Messages[0]
	if first.Role != RoleAssistant {
		t.Errorf("expected assistant greeting, got role %s", first.Role)
	}
	if first.Content != "Hi! How can I help?" {
		t.Errorf("unexpected greeting content %q", first.Content)
	}

	// Empty greeting yields an empty conversation, not an empty message.
	empty := NewSeededConversation("m", "")
	if !empty.IsEmpty() {
		t.Error("expected empty conversation for empty greeting")
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	conv := NewConversation("m")
	conv.Append(NewUserMessage("one"))
	conv.Append(NewAssistantMessage("two"))
	conv.Append(NewUserMessage("three"))

	want := []string{"one", "two", "three"}
	for i, msg := range conv.Messages {
		if msg.Content != want[i] {
			t.Errorf("message %d = %q, want %q", i, msg.Content, want[i])
		}
	}
}

func TestAppend_TitleFromFirstUserMessage(t *testing.T) {
	conv := NewSeededConversation("m", "welcome")
	if conv.Title != "" {
		t.Errorf("greeting must not set title, got %q", conv.Title)
	}

	conv.Append(NewUserMessage("How do I test Go code?"))
	if conv.Title != "How do I test Go code?" {
		t.Errorf("title = %q", conv.Title)
	}

	conv.Append(NewUserMessage("second question"))
	if conv.Title != "How do I test Go code?" {
		t.Error("title must not change after first user message")
	}
}

func TestSetStatus(t *testing.T) {
	conv := NewConversation("m")
	msg := NewUserMessage("hi")
	conv.Append(msg)

	if !conv.SetStatus(msg.ID, StatusAnswered) {
		t.Fatal("SetStatus returned false for existing message")
	}
	if msg.Status != StatusAnswered {
		t.Errorf("status = %v, want answered", msg.Status)
	}

	if conv.SetStatus("msg_nonexistent", StatusFailed) {
		t.Error("SetStatus should return false for unknown ID")
	}
}

func TestHasPending(t *testing.T) {
	conv := NewConversation("m")
	if conv.HasPending() {
		t.Error("empty conversation has no pending turns")
	}

	msg := NewUserMessage("hi")
	conv.Append(msg)
	if !conv.HasPending() {
		t.Error("expected pending turn")
	}

	conv.SetStatus(msg.ID, StatusFailed)
	if conv.HasPending() {
		t.Error("failed turn is not pending")
	}
}

func TestSnapshot_IndependentOfGrowth(t *testing.T) {
	conv := NewConversation("m")
	conv.Append(NewUserMessage("a"))

	snap := conv.Snapshot()
	conv.Append(NewAssistantMessage("b"))

	if len(snap) != 1 {
		t.Errorf("snapshot grew with conversation: len %d", len(snap))
	}
}

// =============================================================================
// WIRE CONVERSION TESTS
// =============================================================================

func TestToWireMessages_LengthAndOrderPreserved(t *testing.T) {
	conv := NewSeededConversation("m", "greeting")
	conv.Append(NewUserMessage("question"))
	conv.Append(NewAssistantMessage("answer"))
	conv.Append(NewUserMessage("")) // empty content must NOT be dropped

	wire := conv.ToWireMessages()

	if len(wire) != conv.Len() {
		t.Fatalf("wire length %d, conversation length %d", len(wire), conv.Len())
	}

	want := []api.ChatMessage{
		{Role: api.RoleAssistant, Content: "greeting"},
		{Role: api.RoleUser, Content: "question"},
		{Role: api.RoleAssistant, Content: "answer"},
		{Role: api.RoleUser, Content: ""},
	}
	for i, w := range want {
		if wire[i] != w {
			t.Errorf("wire[%d] = %+v, want %+v", i, wire[i], w)
		}
	}
}

func TestToWireMessages_MultiPartJoined(t *testing.T) {
	conv := NewConversation("m")
	conv.Append(NewUserMessageParts("line one", "line two"))

	wire := conv.ToWireMessages()
	if len(wire) != 1 {
		t.Fatalf("expected 1 wire message, got %d", len(wire))
	}
	if wire[0].Content != "line one\nline two" {
		t.Errorf("content = %q", wire[0].Content)
	}
}

func TestToWireMessages_Empty(t *testing.T) {
	conv := NewConversation("m")
	wire := conv.ToWireMessages()
	if len(wire) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(wire))
	}
}
