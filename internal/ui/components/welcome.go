// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

const logo = `      _    _  __  __
  ___| | _(_)/ _|/ _|
 / __| |/ / | |_| |_
 \__ \   <| |  _|  _|
 |___/_|\_\_|_| |_|`

// Welcome renders the start screen shown before the first message.
type Welcome struct {
	Version   string
	ModelName string
	HasKey    bool
	Width     int
	Height    int
	theme     *styles.Theme
}

// NewWelcome creates the welcome screen component.
func NewWelcome(theme *styles.Theme, version string) *Welcome {
	return &Welcome{
		Version: version,
		Width:   80,
		Height:  24,
		theme:   theme,
	}
}

// SetSize updates the available area.
func (w *Welcome) SetSize(width, height int) {
	w.Width = width
	w.Height = height
}

// View renders the welcome screen centered in the available area.
func (w *Welcome) View() string {
	lines := []string{
		w.theme.WelcomeLogo.Render(logo),
		w.theme.WelcomeVersion.Render("v" + w.Version),
		"",
		w.theme.WelcomeInfo.Render("Model: " + w.ModelName),
	}

	if w.HasKey {
		lines = append(lines, w.theme.WelcomeInfo.Render("Type a message to start chatting."))
	} else {
		lines = append(lines,
			w.theme.WelcomeInfo.Render("No API key configured."),
			w.theme.WelcomeInfo.Render("Press ")+
				w.theme.ShortcutKey.Render("ctrl+k")+
				w.theme.WelcomeInfo.Render(" to enter one."))
	}

	box := w.theme.WelcomeBox.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(w.Width, w.Height, lipgloss.Center, lipgloss.Center, box)
}
