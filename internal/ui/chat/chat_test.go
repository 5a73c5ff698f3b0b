// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/dispatch"
	"github.com/jeranaias/skiff-tui/internal/keystore"
)

// newTestModel builds a chat model with in-memory fixtures and a sized
// window, the way the program would after the first WindowSizeMsg.
func newTestModel(t *testing.T, withKey bool) *Model {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.SaveConversations = false

	mgr, err := keystore.NewManager(keystore.NewMemoryStore(), keystore.NewSealer(make([]byte, 32)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	client := api.NewClient("")
	if withKey {
		if err := mgr.SetCredential("sk-test-0123456789abcdef"); err != nil {
			t.Fatalf("SetCredential: %v", err)
		}
		client.SetAPIKey("sk-test-0123456789abcdef")
	}

	d := dispatch.NewSeeded(client, cfg.API.Model, cfg.Chat.Greeting)

	m := New(cfg, client, d, mgr, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(*Model)
}

func TestDefaultKeyMap(t *testing.T) {
	keys := DefaultKeyMap()

	checks := []struct {
		name string
		keys []string
	}{
		{"Send", keys.Send.Keys()},
		{"Quit", keys.Quit.Keys()},
		{"NewChat", keys.NewChat.Keys()},
		{"Credential", keys.Credential.Keys()},
		{"Resend", keys.Resend.Keys()},
	}
	for _, c := range checks {
		if len(c.keys) == 0 {
			t.Errorf("%s binding has no keys", c.name)
		}
	}
}

func TestResize_MakesModelReady(t *testing.T) {
	m := newTestModel(t, false)

	if !m.ready {
		t.Fatal("model not ready after WindowSizeMsg")
	}
	if m.viewport.Height != 40-chromeHeight {
		t.Errorf("viewport height = %d, want %d", m.viewport.Height, 40-chromeHeight)
	}
}

func TestSubmit_WithoutCredentialOpensOverlay(t *testing.T) {
	m := newTestModel(t, false)

	m.input.SetValue("hello")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	if m.mode != modeCredential {
		t.Error("expected credential overlay, not a dispatched turn")
	}
	if cmd != nil {
		t.Error("no command should fire without a credential")
	}
	if m.waiting {
		t.Error("waiting should not be set")
	}
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	if cmd != nil {
		t.Error("whitespace-only input should not dispatch")
	}
	if m.waiting {
		t.Error("waiting should not be set")
	}
}

func TestSubmit_DispatchesAndClearsInput(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue("hello there")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	if cmd == nil {
		t.Fatal("expected a dispatch command")
	}
	if !m.waiting {
		t.Error("waiting should be set while the turn is in flight")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
}

func TestSubmit_IgnoredWhileWaiting(t *testing.T) {
	m := newTestModel(t, true)
	m.waiting = true

	m.input.SetValue("second message")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("a second turn must not dispatch while one is in flight")
	}
}

func TestCredentialOverlay_SaveAppliesKey(t *testing.T) {
	m := newTestModel(t, false)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = updated.(*Model)
	if m.mode != modeCredential {
		t.Fatal("ctrl+k should open the credential overlay")
	}

	m.credInput.SetValue("sk-live-0123456789abcdef")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	if m.mode != modeChat {
		t.Error("overlay should close after save")
	}
	if !m.credMgr.HasCredential() {
		t.Error("credential not stored")
	}
	if !m.client.IsConfigured() {
		t.Error("client not configured with the new key")
	}
}

func TestCredentialOverlay_TabTogglesPersistence(t *testing.T) {
	m := newTestModel(t, false)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = updated.(*Model)

	if m.credPersist {
		t.Fatal("persistence should default to off")
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(*Model)
	if !m.credPersist {
		t.Error("tab should enable persistence")
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(*Model)
	if m.credPersist {
		t.Error("tab should toggle persistence back off")
	}
}

func TestCredentialOverlay_EscCancels(t *testing.T) {
	m := newTestModel(t, false)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = updated.(*Model)
	m.credInput.SetValue("sk-typed-but-cancelled-1234")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(*Model)

	if m.mode != modeChat {
		t.Error("esc should close the overlay")
	}
	if m.credMgr.HasCredential() {
		t.Error("cancelled entry must not store a credential")
	}
}

func TestTurnCompleted_FailureEnablesResend(t *testing.T) {
	m := newTestModel(t, true)
	m.waiting = true

	updated, _ := m.Update(turnCompletedMsg{
		result: &dispatch.Result{TurnID: "msg_feedface", Err: "upstream unavailable"},
	})
	m = updated.(*Model)

	if m.waiting {
		t.Error("waiting should clear on completion")
	}
	if m.lastFailedTurn != "msg_feedface" {
		t.Errorf("lastFailedTurn = %q, want msg_feedface", m.lastFailedTurn)
	}

	// A later success clears the resend target.
	updated, _ = m.Update(turnCompletedMsg{result: &dispatch.Result{TurnID: "msg_cafe"}})
	m = updated.(*Model)
	if m.lastFailedTurn != "" {
		t.Errorf("lastFailedTurn not cleared: %q", m.lastFailedTurn)
	}
}

func TestResend_RequiresFailedTurn(t *testing.T) {
	m := newTestModel(t, true)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd != nil {
		t.Error("resend with no failed turn should be a no-op")
	}

	m.lastFailedTurn = "msg_feedface"
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = updated.(*Model)
	if cmd == nil {
		t.Fatal("expected a resend command")
	}
	if !m.waiting {
		t.Error("waiting should be set during resend")
	}
}

func TestNewChat_ResetsTranscript(t *testing.T) {
	m := newTestModel(t, true)
	m.lastFailedTurn = "msg_feedface"
	m.waiting = true

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updated.(*Model)

	if m.waiting || m.lastFailedTurn != "" {
		t.Error("new chat should clear transient turn state")
	}
	if got := m.dispatcher.Conversation().Len(); got > 1 {
		t.Errorf("fresh conversation has %d messages", got)
	}
}
