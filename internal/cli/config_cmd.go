// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler for the skiff CLI.
//
// Handles "skiff config" subcommands. Settable keys are the small set a
// user plausibly changes from the command line; everything else is
// edited in ~/.skiff/config.toml directly.
//
// Subcommands:
//   show           Show current configuration
//   set KEY VALUE  Set a value and save the file
//   path           Print the config file location

package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// HandleConfig handles the "config" command.
func HandleConfig(deps *Deps, args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow(deps.Config)

	case "set":
		return configSet(deps.Config, parser.Positional(1), parser.Positional(2))

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s (try show, set, path)", parser.Subcommand())
	}
}

// configShow prints the current configuration. The API key is not part
// of the config and is never shown here.
func configShow(cfg *config.Config) error {
	label := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	fmt.Println(label.Render("api.base_url:") + "     " + cfg.API.BaseURL)
	fmt.Println(label.Render("api.model:") + "        " + cfg.API.Model)
	fmt.Println(label.Render("api.timeout_secs:") + " " + strconv.Itoa(cfg.API.TimeoutSecs))
	fmt.Println(label.Render("chat.greeting:") + "    " + cfg.Chat.Greeting)
	fmt.Println(label.Render("chat.error_limit:") + " " + strconv.Itoa(cfg.Chat.ErrorLimit))
	fmt.Println(label.Render("ui.theme:") + "         " + cfg.UI.Theme)
	fmt.Println(label.Render("ui.markdown:") + "      " + strconv.FormatBool(cfg.UI.Markdown))
	fmt.Println(label.Render("ui.syntax_theme:") + "  " + cfg.UI.SyntaxTheme)
	fmt.Println(label.Render("storage.save_conversations:") + " " + strconv.FormatBool(cfg.Storage.SaveConversations))
	return nil
}

// configSet updates one key, validates, and saves.
func configSet(cfg *config.Config, key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: skiff config set KEY VALUE")
	}

	switch key {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.model":
		cfg.API.Model = value
	case "api.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("api.timeout_secs must be an integer: %w", err)
		}
		cfg.API.TimeoutSecs = n
	case "chat.greeting":
		cfg.Chat.Greeting = value
	case "chat.error_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("chat.error_limit must be an integer: %w", err)
		}
		cfg.Chat.ErrorLimit = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.markdown must be true or false: %w", err)
		}
		cfg.UI.Markdown = b
	case "ui.syntax_theme":
		cfg.UI.SyntaxTheme = value
	case "storage.save_conversations":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("storage.save_conversations must be true or false: %w", err)
		}
		cfg.Storage.SaveConversations = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
