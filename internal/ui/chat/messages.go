// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/dispatch"
)

// =============================================================================
// MESSAGES
// =============================================================================

// turnCompletedMsg reports the outcome of a dispatched turn.
type turnCompletedMsg struct {
	result *dispatch.Result
	err    error
}

// ConfigReloadedMsg is sent by the config watcher when the file changes.
// Exported so main can forward it through Program.Send.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendTurnCmd dispatches a new user turn.
func sendTurnCmd(d *dispatch.Dispatcher, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := d.Send(context.Background(), text)
		return turnCompletedMsg{result: result, err: err}
	}
}

// resendTurnCmd re-dispatches a failed turn.
func resendTurnCmd(d *dispatch.Dispatcher, turnID string) tea.Cmd {
	return func() tea.Msg {
		result, err := d.Resend(context.Background(), turnID)
		return turnCompletedMsg{result: result, err: err}
	}
}
