// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"reflect"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_Subcommand(t *testing.T) {
	p := NewArgParser([]string{"export", "conv_1", "--format=md"})
	if got := p.Subcommand(); got != "export" {
		t.Errorf("Subcommand() = %q, want export", got)
	}
	if got := p.Positional(1); got != "conv_1" {
		t.Errorf("Positional(1) = %q, want conv_1", got)
	}
}

func TestArgParser_FlagFormats(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want string
	}{
		{"equals form", []string{"--format=md"}, "format", "md"},
		{"space form", []string{"--format", "md"}, "format", "md"},
		{"short flag", []string{"-o", "out.md"}, "o", "out.md"},
		{"missing", []string{"list"}, "format", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.Flag(tt.flag); got != tt.want {
				t.Errorf("Flag(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestArgParser_BoolFlags(t *testing.T) {
	p := NewArgParser([]string{"delete", "conv_1", "--confirm"})
	if !p.BoolFlag("confirm") {
		t.Error("BoolFlag(confirm) = false, want true")
	}
	if p.BoolFlag("force") {
		t.Error("BoolFlag(force) = true, want false")
	}

	// Explicit boolean values
	p = NewArgParser([]string{"--confirm=false"})
	if p.BoolFlag("confirm") {
		t.Error("--confirm=false should parse as false")
	}
}

func TestArgParser_PositionalFrom(t *testing.T) {
	p := NewArgParser([]string{"search", "error", "in", "production"})
	got := p.PositionalFrom(1)
	want := []string{"error", "in", "production"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PositionalFrom(1) = %v, want %v", got, want)
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	p := NewArgParser([]string{"--limit", "25"})
	if got := p.FlagIntOrDefault("limit", 50); got != 25 {
		t.Errorf("FlagIntOrDefault = %d, want 25", got)
	}
	if got := p.FlagIntOrDefault("missing", 50); got != 50 {
		t.Errorf("FlagIntOrDefault fallback = %d, want 50", got)
	}

	p = NewArgParser([]string{"--limit", "notanumber"})
	if got := p.FlagIntOrDefault("limit", 50); got != 50 {
		t.Errorf("FlagIntOrDefault on bad value = %d, want 50", got)
	}
}

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args is TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"token", []string{"token", "show"}, CmdToken},
		{"token alias", []string{"key", "show"}, CmdToken},
		{"sessions", []string{"sessions", "list"}, CmdSessions},
		{"sessions singular", []string{"session", "list"}, CmdSessions},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version long flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tt.argv)
			if cmd != tt.want {
				t.Errorf("ParseArgs(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParseArgs_AskQuery(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "is", "a", "goroutine"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is a goroutine" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgs_AskFlags(t *testing.T) {
	_, args := ParseArgs([]string{"ask", "review", "this", "--file", "main.go", "-m", "gpt-4o"})
	if args.File != "main.go" {
		t.Errorf("File = %q, want main.go", args.File)
	}
	if args.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", args.Model)
	}
	if args.Query != "review this" {
		t.Errorf("Query = %q, want %q", args.Query, "review this")
	}
}

func TestParseArgs_UnknownWordBecomesQuestion(t *testing.T) {
	cmd, args := ParseArgs([]string{"explain", "generics"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "explain generics" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--quiet", "--json", "--model=gpt-4o", "ask", "hi"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if !args.Quiet || !args.JSON {
		t.Error("global flags not parsed")
	}
	if args.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", args.Model)
	}
}

func TestParseArgs_ShortVIsVerbose(t *testing.T) {
	// -v belongs to the global flag set, so bare "skiff -v" starts the
	// TUI in verbose mode rather than printing the version.
	cmd, args := ParseArgs([]string{"-v"})
	if cmd != CmdTUI {
		t.Fatalf("cmd = %v, want CmdTUI", cmd)
	}
	if !args.Verbose {
		t.Error("Verbose not set")
	}
}

func TestParseArgs_SubcommandCapture(t *testing.T) {
	_, args := ParseArgs([]string{"token", "persist", "on"})
	if args.Subcommand != "persist" {
		t.Errorf("Subcommand = %q, want persist", args.Subcommand)
	}
	if !reflect.DeepEqual(args.Raw, []string{"persist", "on"}) {
		t.Errorf("Raw = %v", args.Raw)
	}
}
