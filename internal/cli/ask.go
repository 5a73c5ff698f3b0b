// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the skiff CLI.
//
// Handles "skiff ask" which sends one question through the dispatcher
// and prints the reply.
//
// Examples:
//   skiff ask "What is a goroutine?"
//   skiff ask "Review this:" --file main.go
//   skiff ask --json "List HTTP verbs"
//   cat error.log | skiff ask "Explain this error"

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/dispatch"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// MaxFileSize is the maximum file size to include with a question (50KB).
const MaxFileSize = 50 * 1024

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newAskRenderer builds a glamour renderer sized to the terminal.
// Returns nil when initialization fails; callers fall back to plain text.
func newAskRenderer() *glamour.TermRenderer {
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// displayReply prints a reply, markdown-rendered when stdout is a TTY.
// Piped output stays plain so it can be post-processed.
func displayReply(reply string) {
	if !IsStdoutTTY() {
		fmt.Print(reply)
		return
	}
	r := newAskRenderer()
	if r == nil {
		fmt.Print(reply)
		return
	}
	rendered, err := r.Render(reply)
	if err != nil {
		fmt.Print(reply)
		return
	}
	fmt.Print(rendered)
}

// =============================================================================
// FILE READING
// =============================================================================

// readFileForContext reads a file and formats it for inclusion in a
// question. Files larger than MaxFileSize are rejected.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("cannot access file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n--- File: %s ---\n", path))
	b.Write(content)
	b.WriteString("\n--- End of file ---\n")
	return b.String(), nil
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// askJSONResult is the envelope printed in --json mode.
type askJSONResult struct {
	Response   string `json:"response"`
	Model      string `json:"model"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// HandleAsk handles the "ask" command.
func HandleAsk(deps *Deps, args Args) error {
	question := args.Query

	// No question on the command line: accept piped stdin.
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err == nil && len(data) > 0 {
				question = strings.TrimSpace(string(data))
			}
		}
	}

	if question == "" {
		return fmt.Errorf("no question provided. Usage: skiff ask \"your question\"")
	}

	if args.File != "" {
		fileContent, err := readFileForContext(args.File)
		if err != nil {
			return err
		}
		question = question + "\n" + fileContent

		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n",
				lipgloss.NewStyle().Foreground(styles.Cyan).Render("[+]"),
				args.File)
		}
	}

	if !deps.Client.IsConfigured() {
		return fmt.Errorf("no API key configured. Run: skiff token set")
	}

	modelName := args.Model
	if modelName == "" {
		modelName = deps.Config.API.Model
	}
	deps.Client.SetModel(modelName)

	d := dispatch.New(deps.Client, modelName).
		WithErrorLimit(deps.Config.Chat.ErrorLimit)

	start := time.Now()
	result, err := d.Send(context.Background(), question)
	duration := time.Since(start)

	if args.JSON {
		out := askJSONResult{Model: modelName, DurationMs: duration.Milliseconds()}
		if err != nil {
			out.Error = err.Error()
		} else if result.Err != "" {
			out.Error = result.Err
		} else {
			out.Response = result.Reply.WireContent()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if err != nil {
		return err
	}
	if result.Err != "" {
		return fmt.Errorf("request failed: %s", result.Err)
	}

	displayReply(result.Reply.WireContent())
	fmt.Println()

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s | %s %v\n",
			lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("Model:"),
			modelName,
			lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("Time:"),
			duration.Round(time.Millisecond))
	}

	return nil
}
