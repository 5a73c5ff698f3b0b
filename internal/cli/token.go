// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// token.go - API key management command handler for the skiff CLI.
//
// Handles "skiff token" subcommands. The key lives in one credential
// slot; persistence is opt-in and the on-disk copy is always sealed.
//
// Subcommands:
//   show            Show key fingerprint and persistence state
//   set [KEY]       Set the key (prompts without echo if omitted)
//     --persist     Also save the key to disk
//   persist on|off  Toggle on-disk persistence
//   clear           Forget the key everywhere

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// HandleToken handles the "token" command.
func HandleToken(deps *Deps, args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show", "status":
		return tokenShow(deps)

	case "set":
		return tokenSet(deps, parser)

	case "persist":
		return tokenPersist(deps, parser)

	case "clear", "delete":
		return tokenClear(deps)

	default:
		return fmt.Errorf("unknown token subcommand: %s (try show, set, persist, clear)", parser.Subcommand())
	}
}

// tokenShow prints the credential state without exposing the key.
// SECURITY: Only the fingerprint is ever printed.
func tokenShow(deps *Deps) error {
	label := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	if !deps.Creds.HasCredential() {
		fmt.Println(label.Render("API key:") + " not set")
		fmt.Println(label.Render("Set one with:") + " skiff token set")
		return nil
	}

	fmt.Println(label.Render("API key:") + " " + deps.Client.APIKeyMasked())

	persistence := "session only"
	if deps.Creds.Persisting() {
		persistence = "saved to disk (encrypted)"
	}
	fmt.Println(label.Render("Persistence:") + " " + persistence)
	return nil
}

// tokenSet stores a new key, prompting without echo when not given on
// the command line.
func tokenSet(deps *Deps, parser *ArgParser) error {
	key := parser.Positional(1)

	if key == "" {
		var err error
		key, err = ReadSecret("API key: ")
		if err != nil {
			return err
		}
	} else {
		// SECURITY: keys on the command line end up in shell history.
		fmt.Fprintln(os.Stderr, "Warning: prefer 'skiff token set' without the key so it is prompted, not logged.")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("no key provided")
	}
	if !api.ValidateAPIKey(key) {
		fmt.Fprintln(os.Stderr, "Warning: key does not look like an sk- API key; storing anyway.")
	}

	if parser.BoolFlag("persist") {
		if err := deps.Creds.SetPersistence(true); err != nil {
			return fmt.Errorf("failed to enable persistence: %w", err)
		}
	}
	if err := deps.Creds.SetCredential(key); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	deps.Client.SetAPIKey(key)

	fmt.Println("Stored " + deps.Client.APIKeyMasked())
	if deps.Creds.Persisting() {
		fmt.Println("The key is saved to disk, encrypted with the local master key.")
	} else {
		fmt.Println("The key is held for this session only. Use --persist or 'skiff token persist on' to save it.")
	}
	return nil
}

// tokenPersist toggles on-disk persistence of the credential.
func tokenPersist(deps *Deps, parser *ArgParser) error {
	mode := parser.Positional(1)

	switch mode {
	case "on", "true", "yes":
		if err := deps.Creds.SetPersistence(true); err != nil {
			return fmt.Errorf("failed to enable persistence: %w", err)
		}
		if deps.Creds.HasCredential() {
			fmt.Println("Persistence enabled; the current key is saved to disk, encrypted.")
		} else {
			fmt.Println("Persistence enabled; the next key you set will be saved to disk.")
		}

	case "off", "false", "no":
		if err := deps.Creds.SetPersistence(false); err != nil {
			return fmt.Errorf("failed to disable persistence: %w", err)
		}
		fmt.Println("Persistence disabled; the on-disk copy was removed. The session key is kept.")

	case "":
		state := "off"
		if deps.Creds.Persisting() {
			state = "on"
		}
		fmt.Println("Persistence: " + state)

	default:
		return fmt.Errorf("usage: skiff token persist on|off")
	}
	return nil
}

// tokenClear forgets the credential in memory and on disk.
func tokenClear(deps *Deps) error {
	if err := deps.Creds.Clear(); err != nil {
		return fmt.Errorf("failed to clear key: %w", err)
	}
	deps.Client.SetAPIKey("")
	fmt.Println("API key cleared.")
	return nil
}
