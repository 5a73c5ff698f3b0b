// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the skiff CLI.
//
// Handles "skiff chat", a line-oriented REPL for terminals where the
// full TUI is unwanted (ssh sessions, minimal environments).
//
// A trailing backslash continues the message on the next line; the
// collected lines are sent as one multi-part turn.
//
// In-chat commands:
//   /new            Start a fresh conversation
//   /status         Show session statistics
//   /resend         Retry the last failed turn
//   /quit, /q       Exit (also Ctrl+D)
//   Ctrl+C          Abort the current input line

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/dispatch"
	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

// init configures the lipgloss color profile for all styled CLI output.
// USABILITY: Respects NO_COLOR, FORCE_COLOR, and TTY detection, so piped
// output stays plain text.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(deps *Deps, args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	if !deps.Client.IsConfigured() {
		return fmt.Errorf("no API key configured. Run: skiff token set")
	}

	modelName := args.Model
	if modelName == "" {
		modelName = deps.Config.API.Model
	}
	deps.Client.SetModel(modelName)

	d := dispatch.NewSeeded(deps.Client, modelName, deps.Config.Chat.Greeting).
		WithErrorLimit(deps.Config.Chat.ErrorLimit)

	input := NewChatCLI()
	defer input.Close()

	startTime := time.Now()
	turns := 0
	var lastFailedTurn string

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("skiff chat"))
		fmt.Println(infoStyle.Render("Model: " + modelName))
		if deps.Config.Chat.Greeting != "" {
			fmt.Println(infoStyle.Render(deps.Config.Chat.Greeting))
		}
		fmt.Println(infoStyle.Render("End a line with \\ to continue. /quit to exit."))
		fmt.Println()
	}

	for {
		parts, err := readTurn(input)
		if err == liner.ErrPromptAborted {
			fmt.Println(warningStyle.Render("(input aborted, /quit to exit)"))
			continue
		}
		if err != nil {
			// Ctrl+D or closed stdin.
			break
		}

		line := strings.TrimSpace(strings.Join(parts, "\n"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := handleChatCommand(line, d, &lastFailedTurn, startTime, turns); done {
				break
			}
			continue
		}

		var result *dispatch.Result
		if len(parts) > 1 {
			result, err = d.SendParts(context.Background(), parts)
		} else {
			result, err = d.Send(context.Background(), parts[0])
		}

		if err != nil {
			if result != nil && result.Err != "" {
				lastFailedTurn = result.TurnID
				fmt.Println(errStyle.Render("[failed] " + result.Err))
				fmt.Println(infoStyle.Render("Use /resend to retry."))
			} else {
				fmt.Println(errStyle.Render("Error: " + err.Error()))
			}
			continue
		}

		turns++
		lastFailedTurn = ""
		fmt.Println()
		displayReply(result.Reply.WireContent())
		fmt.Println()
	}

	if !args.Quiet {
		printSessionSummary(startTime, turns)
	}
	maybeSaveTranscript(deps, d.Conversation())
	return nil
}

// readTurn reads one logical message, following backslash continuations.
func readTurn(input *ChatCLI) ([]string, error) {
	var parts []string
	prompt := promptStyle.Render("> ")

	for {
		line, err := input.ReadInput(prompt)
		if err != nil {
			return nil, err
		}

		if strings.HasSuffix(line, "\\") {
			parts = append(parts, strings.TrimSuffix(line, "\\"))
			prompt = promptStyle.Render(". ")
			continue
		}

		parts = append(parts, line)
		return parts, nil
	}
}

// handleChatCommand processes a /command. Returns true when the REPL
// should exit.
func handleChatCommand(line string, d *dispatch.Dispatcher, lastFailedTurn *string, startTime time.Time, turns int) bool {
	cmd := strings.Fields(line)[0]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/new", "/clear":
		d.Reset()
		*lastFailedTurn = ""
		fmt.Println(infoStyle.Render("Started a new conversation."))

	case "/status", "/s":
		printSessionSummary(startTime, turns)
		if d.LastError() != "" {
			fmt.Println(errStyle.Render("Last error: " + d.LastError()))
		}

	case "/resend", "/r":
		if *lastFailedTurn == "" {
			fmt.Println(warningStyle.Render("Nothing to resend."))
			return false
		}
		result, err := d.Resend(context.Background(), *lastFailedTurn)
		if err != nil {
			msg := err.Error()
			if result != nil && result.Err != "" {
				msg = result.Err
			}
			fmt.Println(errStyle.Render("[failed] " + msg))
			return false
		}
		*lastFailedTurn = ""
		fmt.Println()
		displayReply(result.Reply.WireContent())
		fmt.Println()

	case "/help", "/h":
		fmt.Println(infoStyle.Render("/new /status /resend /quit"))

	default:
		fmt.Println(warningStyle.Render("Unknown command: " + cmd))
	}

	return false
}

// printSessionSummary prints elapsed time and turn count.
func printSessionSummary(startTime time.Time, turns int) {
	fmt.Printf("%s %d %s | %s %v\n",
		infoStyle.Render("Turns:"),
		turns,
		infoStyle.Render("answered"),
		infoStyle.Render("Elapsed:"),
		time.Since(startTime).Round(time.Second))
}

// maybeSaveTranscript saves the conversation if storage is enabled.
func maybeSaveTranscript(deps *Deps, conv *model.Conversation) {
	if deps.Conversations == nil || !deps.Config.Storage.SaveConversations {
		return
	}
	if conv.IsEmpty() {
		return
	}
	if err := deps.Conversations.Save(conv); err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render("Could not save transcript: "+err.Error()))
	}
}
