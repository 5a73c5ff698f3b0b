// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the skiff TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLOR PALETTE
// =============================================================================

// Core palette. Adaptive colors pick the variant for the detected
// terminal background.
var (
	Cyan    = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	Amber   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	Rose    = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

	Surface    = lipgloss.AdaptiveColor{Light: "#F9FAFB", Dark: "#1F2937"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
)

// StatusIndicators provides shape-based indicators used alongside color.
// ACCESSIBILITY: Distinct shapes keep states readable for colorblind users.
var StatusIndicators = struct {
	Success string
	Error   string
	Pending string
}{
	Success: "+",
	Error:   "x",
	Pending: "o",
}
