// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved conversation management for the skiff CLI.
//
// Handles "skiff sessions" subcommands over the JSON transcript store.
//
// Subcommands:
//   list                 List saved conversations, newest first
//   search QUERY         Search titles and message content
//   show ID              Print a transcript
//   export ID            Export as Markdown
//     --output FILE      Write to a file instead of stdout
//   delete ID --confirm  Delete a conversation

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/storage"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// HandleSessions handles the "sessions" command.
func HandleSessions(deps *Deps, args Args) error {
	if deps.Conversations == nil {
		return fmt.Errorf("conversation storage is not available")
	}

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return sessionsList(deps.Conversations, "")

	case "search":
		query := strings.Join(parser.PositionalFrom(1), " ")
		if query == "" {
			return fmt.Errorf("usage: skiff sessions search QUERY")
		}
		return sessionsList(deps.Conversations, query)

	case "show":
		return sessionsShow(deps.Conversations, parser.Positional(1))

	case "export":
		return sessionsExport(deps.Conversations, parser)

	case "delete", "rm":
		return sessionsDelete(deps.Conversations, parser)

	default:
		return fmt.Errorf("unknown sessions subcommand: %s (try list, search, show, export, delete)", parser.Subcommand())
	}
}

// sessionsList prints conversation summaries, optionally filtered.
func sessionsList(store *storage.ConversationStore, query string) error {
	var (
		summaries []storage.ConversationSummary
		err       error
	)
	if query == "" {
		summaries, err = store.List()
	} else {
		summaries, err = store.Search(query)
	}
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(summaries) == 0 {
		if query == "" {
			fmt.Println("No saved conversations.")
		} else {
			fmt.Printf("No conversations matching %q.\n", query)
		}
		return nil
	}

	idStyle := lipgloss.NewStyle().Foreground(styles.Cyan)
	metaStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %s\n",
			idStyle.Render(s.ID),
			util.TruncateRunes(title, 50),
			metaStyle.Render(fmt.Sprintf("%d messages, %s",
				s.MessageCount, s.UpdatedAt.Format("2006-01-02 15:04"))))
	}
	return nil
}

// sessionsShow prints a full transcript to stdout.
func sessionsShow(store *storage.ConversationStore, id string) error {
	if id == "" {
		return fmt.Errorf("usage: skiff sessions show ID")
	}

	conv, err := store.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	roleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	fmt.Println(conv.DisplayTitle())
	fmt.Println()

	for _, msg := range conv.Messages {
		fmt.Println(roleStyle.Render(msg.Role.DisplayName() + ":"))
		fmt.Println(msg.WireContent())
		if msg.Status == model.StatusFailed {
			fmt.Println(lipgloss.NewStyle().Foreground(styles.Rose).Render("(request failed)"))
		}
		fmt.Println()
	}
	return nil
}

// sessionsExport writes a Markdown export to stdout or a file.
func sessionsExport(store *storage.ConversationStore, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: skiff sessions export ID [--output FILE]")
	}

	md, err := store.ExportMarkdown(id)
	if err != nil {
		return fmt.Errorf("failed to export conversation: %w", err)
	}

	if out := parser.Flag("output"); out != "" {
		if err := util.AtomicWriteFile(out, []byte(md), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported %s to %s\n", id, out)
		return nil
	}

	fmt.Print(md)
	return nil
}

// sessionsDelete removes a conversation after explicit confirmation.
func sessionsDelete(store *storage.ConversationStore, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: skiff sessions delete ID --confirm")
	}
	if !parser.BoolFlag("confirm") {
		fmt.Fprintln(os.Stderr, "Refusing to delete without --confirm.")
		return fmt.Errorf("missing --confirm")
	}

	if err := store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}
