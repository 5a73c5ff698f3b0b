// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders transcript messages for the viewport.
type MessageRenderer struct {
	theme    *styles.Theme
	markdown *MarkdownRenderer
	width    int

	// RenderMarkdown controls whether assistant replies go through glamour.
	RenderMarkdown bool

	// SyntaxTheme is the chroma style for code blocks in plain mode.
	SyntaxTheme string
}

// NewMessageRenderer creates a renderer for the given width.
func NewMessageRenderer(theme *styles.Theme, width int, renderMarkdown bool) *MessageRenderer {
	return &MessageRenderer{
		theme:          theme,
		markdown:       NewMarkdownRenderer(width),
		width:          width,
		RenderMarkdown: renderMarkdown,
		SyntaxTheme:    "monokai",
	}
}

// SetWidth updates the render width.
func (r *MessageRenderer) SetWidth(width int) {
	r.width = width
	r.markdown.SetWidth(width)
}

// Render renders a full transcript.
func (r *MessageRenderer) Render(messages []*model.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.RenderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMessage renders a single message with its role label and, for user
// turns, the request status.
func (r *MessageRenderer) RenderMessage(msg *model.Message) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(r.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString(r.statusSuffix(msg))
		b.WriteString("\n")
		b.WriteString(r.theme.MessageBody.Render(msg.WireContent()))

	case model.RoleAssistant:
		b.WriteString(r.theme.AssistantLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		if r.RenderMarkdown {
			b.WriteString(strings.TrimRight(r.markdown.Render(msg.WireContent()), "\n"))
		} else {
			b.WriteString(r.renderPlain(msg.WireContent()))
		}

	default:
		b.WriteString(r.theme.HeaderSubtitle.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(r.theme.MessageBody.Render(msg.WireContent()))
	}

	return b.String()
}

// renderPlain renders reply text without glamour, but still highlights
// fenced code blocks.
func (r *MessageRenderer) renderPlain(content string) string {
	var b strings.Builder
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]

		if strings.HasPrefix(line, "```") {
			language := strings.TrimSpace(strings.TrimPrefix(line, "```"))
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
				code = append(code, lines[i])
				i++
			}
			i++ // closing fence

			block := NewCodeBlock(language, strings.Join(code, "\n"), r.SyntaxTheme)
			block.MaxWidth = r.width
			b.WriteString(block.Render())
			b.WriteString("\n")
			continue
		}

		b.WriteString(r.theme.MessageBody.Render(line))
		b.WriteString("\n")
		i++
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderFailedDetail renders the error line shown under a failed turn.
func (r *MessageRenderer) RenderFailedDetail(errText string) string {
	if errText == "" {
		return ""
	}
	return r.theme.FailedDetail.Render(errText) + "\n" +
		r.theme.ShortcutKey.Render("ctrl+r") + r.theme.ShortcutDesc.Render(" resend")
}

// statusSuffix returns the marker appended to a user turn's label.
func (r *MessageRenderer) statusSuffix(msg *model.Message) string {
	switch msg.Status {
	case model.StatusPending:
		return " " + r.theme.PendingMarker.Render("["+styles.StatusIndicators.Pending+" sending]")
	case model.StatusFailed:
		return " " + r.theme.FailedMarker.Render("["+styles.StatusIndicators.Error+" failed]")
	default:
		return ""
	}
}
