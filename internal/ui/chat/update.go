// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if m.mode == modeCredential {
			return m.handleCredentialKey(msg)
		}
		return m.handleChatKey(msg)

	case turnCompletedMsg:
		return m.handleTurnCompleted(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		// The optimistic user turn is appended on the command goroutine,
		// so pick it up on the next tick instead of waiting for completion.
		if m.waiting {
			m.refreshViewport()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - chromeHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = contentHeight
	}

	m.input.Width = msg.Width - 6
	m.credInput.Width = msg.Width / 2
	m.statusBar.SetWidth(msg.Width)
	m.welcome.SetSize(msg.Width, contentHeight)
	m.renderer.SetWidth(msg.Width - 2)

	m.refreshViewport()
	return m, nil
}

// =============================================================================
// CHAT MODE KEYS
// =============================================================================

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveConversation()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.submitInput()

	case key.Matches(msg, m.keys.NewChat):
		m.dispatcher.Reset()
		m.waiting = false
		m.lastFailedTurn = ""
		m.refreshViewport()
		m.syncStatus()
		return m, nil

	case key.Matches(msg, m.keys.Credential):
		m.mode = modeCredential
		m.credInput.SetValue("")
		m.credInput.Focus()
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Resend):
		if m.lastFailedTurn == "" || m.waiting {
			return m, nil
		}
		m.waiting = true
		m.syncStatus()
		return m, resendTurnCmd(m.dispatcher, m.lastFailedTurn)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput validates and dispatches the typed message.
func (m *Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	if !m.credMgr.HasCredential() {
		// Route the user to the credential overlay instead of failing.
		m.mode = modeCredential
		m.credInput.Focus()
		m.input.Blur()
		return m, nil
	}

	m.input.SetValue("")
	m.waiting = true
	m.lastFailedTurn = ""
	m.syncStatus()

	// The optimistic append happens inside Send, on the command goroutine.
	// The spinner tick keeps the screen alive until turnCompletedMsg.
	return m, tea.Batch(sendTurnCmd(m.dispatcher, text), m.spin.Tick)
}

// =============================================================================
// CREDENTIAL OVERLAY KEYS
// =============================================================================

func (m *Model) handleCredentialKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeChat
		m.credInput.SetValue("")
		m.credInput.Blur()
		m.input.Focus()
		return m, nil

	case "tab":
		// Toggle persistence opt-in. Takes effect on save.
		m.credPersist = !m.credPersist
		return m, nil

	case "enter":
		cred := strings.TrimSpace(m.credInput.Value())
		if cred == "" {
			return m, nil
		}

		// Persistence first so the credential write-through lands in the
		// right state: enable writes immediately, disable clears the slot.
		_ = m.credMgr.SetPersistence(m.credPersist)
		_ = m.credMgr.SetCredential(cred)
		m.client.SetAPIKey(cred)

		m.mode = modeChat
		m.credInput.SetValue("")
		m.credInput.Blur()
		m.input.Focus()
		m.syncStatus()
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.credInput, cmd = m.credInput.Update(msg)
	return m, cmd
}

// =============================================================================
// TURN COMPLETION
// =============================================================================

func (m *Model) handleTurnCompleted(msg turnCompletedMsg) (tea.Model, tea.Cmd) {
	m.waiting = false

	if msg.result != nil && msg.result.Err != "" {
		m.lastFailedTurn = msg.result.TurnID
	} else if msg.err == nil {
		m.lastFailedTurn = ""
	}

	m.refreshViewport()
	m.syncStatus()
	m.saveConversation()
	return m, nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m *Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	m.cfg = msg.Config

	m.client.WithBaseURL(msg.Config.API.BaseURL)
	m.client.SetModel(msg.Config.API.Model)
	m.client.WithTimeout(msg.Config.Timeout())

	m.statusBar.ModelName = msg.Config.API.Model
	m.welcome.ModelName = msg.Config.API.Model
	m.renderer.RenderMarkdown = msg.Config.UI.Markdown

	m.refreshViewport()
	return m, nil
}
