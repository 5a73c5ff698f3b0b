// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for skiff.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/keystore"
	"github.com/jeranaias/skiff-tui/internal/storage"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdToken
	CmdSessions
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	JSON    bool

	// Command-specific
	Query      string
	File       string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

// Deps carries the shared dependencies into command handlers. The TUI
// and every subcommand draw from the same config, HTTP client,
// credential manager, and conversation store.
type Deps struct {
	Config        *config.Config
	Client        *api.Client
	Creds         *keystore.Manager
	Conversations *storage.ConversationStore
}

const usageText = `skiff - terminal chat for OpenAI-compatible APIs

Usage:
  skiff                        Start the TUI (default)
  skiff ask "question"         Ask a single question
  skiff chat                   Interactive line-mode chat
  skiff token [subcommand]     API key management
  skiff sessions [subcommand]  Saved conversation management
  skiff config [show|set|path] Configuration
  skiff version                Show version
  skiff help                   Show this help

Ask Command:
  skiff ask "What is a goroutine?"
  skiff ask "Review this:" --file main.go
  skiff ask --json "List HTTP verbs"
    -f, --file FILE    Include file content with the question
    -m, --model NAME   Use a specific model
    --json             Print the raw response envelope as JSON

Chat Command:
  skiff chat                   Start the REPL
  skiff chat --model gpt-4o    Use a specific model
  End a line with \ to continue the message on the next line.
  In-chat commands: /new /status /resend /quit

Token Commands:
  skiff token show             Show key fingerprint and persistence state
  skiff token set [KEY]        Set the API key (prompts if omitted)
    --persist                  Also save the key to disk (encrypted)
  skiff token persist on|off   Toggle on-disk persistence
  skiff token clear            Forget the key (memory and disk)

Session Commands:
  skiff sessions list          List saved conversations
  skiff sessions search QUERY  Search titles and transcripts
  skiff sessions show ID       Print a transcript
  skiff sessions export ID     Export as Markdown
    --output FILE              Write to file instead of stdout
  skiff sessions delete ID --confirm

Config Commands:
  skiff config show            Show current configuration
  skiff config set KEY VALUE   Set a value (api.model, api.base_url,
                               ui.theme, ui.markdown, chat.greeting)
  skiff config path            Print the config file location

Global Flags:
  -q, --quiet      Minimal output
  -v, --verbose    Debug output
  --model NAME     Override the configured model
  --json           Output in JSON where supported

Environment:
  SKIFF_API_KEY    API key (overrides the stored credential)
  SKIFF_BASE_URL   API base URL
  SKIFF_MODEL      Model name

skiff v%s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("skiff version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		parseChatArgs(&parsed, remaining)
		return CmdChat, parsed

	case "token", "key":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdToken, parsed

	case "session", "sessions":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdSessions, parsed

	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdConfig, parsed

	case "version", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown word: treat the whole line as a question.
		parsed.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsed, parsed.Raw)
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--model":
			if i+1 < len(argv) {
				i++
				parsed.Model = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			}
		}
	}
}
