// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the skiff TUI:
// transcript rendering, the status bar, the welcome screen, and the
// markdown/code renderers used for assistant replies.
package components
