// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for skiff.
//
// It contains Unicode-safe string truncation used for error display and
// conversation previews, and an atomic file writer used by every component
// that persists state to disk.
package util
