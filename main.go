// skiff - terminal chat for OpenAI-compatible APIs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/cli"
	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/dispatch"
	"github.com/jeranaias/skiff-tui/internal/keystore"
	"github.com/jeranaias/skiff-tui/internal/storage"
	"github.com/jeranaias/skiff-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	deps, cleanup, err := buildDeps(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch cmd {
	case cli.CmdTUI:
		err = runTUI(deps)
	case cli.CmdAsk:
		err = cli.HandleAsk(deps, args)
	case cli.CmdChat:
		err = cli.HandleChat(deps, args)
	case cli.CmdToken:
		err = cli.HandleToken(deps, args)
	case cli.CmdSessions:
		err = cli.HandleSessions(deps, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(deps, args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps wires the shared dependencies: config, credential manager,
// HTTP client, and conversation store. The returned cleanup closes the
// keystore.
func buildDeps(args cli.Args) (*cli.Deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, nil, err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return nil, nil, err
	}

	store, err := keystore.OpenSQLiteStore(filepath.Join(configDir, "skiff.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keystore: %w", err)
	}

	sealer, err := keystore.LoadOrCreateSealer(filepath.Join(configDir, "master.key"))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load master key: %w", err)
	}

	creds, err := keystore.NewManager(store, sealer)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	client := api.NewClient(creds.Credential()).
		WithBaseURL(cfg.API.BaseURL).
		WithTimeout(cfg.Timeout())
	client.SetModel(cfg.API.Model)

	// The environment wins over the stored credential but is never
	// written through to the keystore.
	if envKey := config.EnvAPIKey(); envKey != "" {
		client.SetAPIKey(envKey)
	}

	convDir := cfg.Storage.Dir
	if convDir == "" {
		convDir, err = storage.DefaultDir()
		if err != nil {
			creds.Close()
			return nil, nil, err
		}
	}
	conversations, err := storage.NewConversationStore(convDir)
	if err != nil {
		creds.Close()
		return nil, nil, fmt.Errorf("failed to open conversation store: %w", err)
	}

	deps := &cli.Deps{
		Config:        cfg,
		Client:        client,
		Creds:         creds,
		Conversations: conversations,
	}
	cleanup := func() { creds.Close() }
	return deps, cleanup, nil
}

// runTUI starts the bubbletea program with config live-reload.
func runTUI(deps *cli.Deps) error {
	// The alternate screen owns the terminal; send logs to a file.
	if configDir, err := config.ConfigDir(); err == nil {
		if f, err := os.OpenFile(filepath.Join(configDir, "skiff.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			log.SetOutput(f)
			defer f.Close()
		}
	}

	d := dispatch.NewSeeded(deps.Client, deps.Config.API.Model, deps.Config.Chat.Greeting).
		WithErrorLimit(deps.Config.Chat.ErrorLimit)

	m := chat.New(deps.Config, deps.Client, d, deps.Creds, deps.Conversations)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Live config reload: edits to config.toml land as messages in the
	// running program.
	if path, err := config.ConfigPath(); err == nil {
		watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: cfg})
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
