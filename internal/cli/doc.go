// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the skiff command-line interface.
//
// The default invocation starts the TUI; subcommands provide one-shot
// queries (ask), a line-oriented REPL (chat), credential management
// (token), saved transcript management (sessions), and configuration
// (config). All handlers receive their dependencies through Deps so
// tests can substitute in-memory implementations.
package cli
