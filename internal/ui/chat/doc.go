// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat screen.
//
// The model follows the standard bubbletea shape: Update owns all state
// transitions, network work happens in commands, and the dispatcher
// serializes turns so the screen can never fire two requests at once.
package chat
