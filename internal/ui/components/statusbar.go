// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/ui/styles"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusWaiting
	StatusError
	StatusNoCredential
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusWaiting:
		return "Waiting..."
	case StatusError:
		return "Error"
	case StatusNoCredential:
		return "No API key"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom status bar.
type StatusBar struct {
	ModelName string
	Status    Status
	Persisted bool // credential persistence enabled
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{}

	if s.ModelName != "" {
		name := util.TruncateRunes(s.ModelName, 24)
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(name))
	}

	keyState := "key: session"
	if s.Persisted {
		keyState = "key: saved"
	}
	if s.Status == StatusNoCredential {
		keyState = "key: none"
	}
	parts = append(parts, s.theme.ShortcutDesc.Render(keyState))

	parts = append(parts, s.statusStyle().Render(s.Status.String()))

	if s.Width >= 80 {
		parts = append(parts, s.renderShortcuts())
	}

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, sep))
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^N") + s.theme.ShortcutDesc.Render("new"),
		s.theme.ShortcutKey.Render("^K") + s.theme.ShortcutDesc.Render("key"),
		s.theme.ShortcutKey.Render("^C") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

// statusStyle returns the style for the current status.
func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return s.theme.StatusReady
	case StatusWaiting:
		return s.theme.StatusBusy
	case StatusError, StatusNoCredential:
		return s.theme.StatusError
	default:
		return s.theme.ShortcutDesc
	}
}
