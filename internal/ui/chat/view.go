// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/util"
)

// chromeHeight is the number of rows taken by the header, the input
// container, and the status bar. The viewport gets the rest.
const chromeHeight = 7

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.mode == modeCredential {
		return m.viewCredentialOverlay()
	}

	sections := []string{
		m.viewHeader(),
		m.viewContent(),
		m.viewInput(),
		m.statusBar.View(),
	}

	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m *Model) viewHeader() string {
	title := m.theme.HeaderTitle.Render("skiff")
	subtitle := m.theme.HeaderSubtitle.Render(
		util.TruncateRunes(m.dispatcher.Conversation().DisplayTitle(), 60))
	return m.theme.Header.Width(m.width - 2).Render(title + "  " + subtitle)
}

func (m *Model) viewContent() string {
	if m.dispatcher.Conversation().Len() <= 1 && !m.waiting {
		// Only the greeting (or nothing) so far.
		return m.welcome.View()
	}

	content := m.viewport.View()
	if m.waiting {
		thinking := m.spin.View() + m.theme.ThinkingText.Render(" thinking...")
		content = lipgloss.JoinVertical(lipgloss.Left, content, thinking)
	}
	return content
}

func (m *Model) viewInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

// =============================================================================
// CREDENTIAL OVERLAY
// =============================================================================

func (m *Model) viewCredentialOverlay() string {
	persistState := "off"
	if m.credPersist {
		persistState = "on"
	}

	lines := []string{
		m.theme.OverlayTitle.Render("Set API key"),
		"",
		m.credInput.View(),
		"",
		m.theme.OverlayHint.Render("tab: save to disk [" + persistState + "]"),
		m.theme.OverlayHint.Render("enter: apply   esc: cancel"),
	}

	box := m.theme.OverlayBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
