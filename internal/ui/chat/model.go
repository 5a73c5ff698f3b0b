// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/config"
	"github.com/jeranaias/skiff-tui/internal/dispatch"
	"github.com/jeranaias/skiff-tui/internal/keystore"
	"github.com/jeranaias/skiff-tui/internal/storage"
	"github.com/jeranaias/skiff-tui/internal/ui/components"
	"github.com/jeranaias/skiff-tui/internal/ui/styles"
)

// Version is the displayed application version.
const Version = "0.1.0"

// mode selects which surface owns keyboard input.
type mode int

const (
	modeChat mode = iota
	modeCredential
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the bubbletea model for the chat screen.
type Model struct {
	cfg        *config.Config
	theme      *styles.Theme
	keys       KeyMap
	client     *api.Client
	dispatcher *dispatch.Dispatcher
	credMgr    *keystore.Manager
	convStore  *storage.ConversationStore

	// Components
	viewport  viewport.Model
	input     textinput.Model
	credInput textinput.Model
	spin      spinner.Model
	statusBar *components.StatusBar
	welcome   *components.Welcome
	renderer  *components.MessageRenderer

	// State
	mode           mode
	width          int
	height         int
	ready          bool
	waiting        bool
	lastFailedTurn string
	credPersist    bool
}

// New creates the chat model.
func New(cfg *config.Config, client *api.Client, d *dispatch.Dispatcher,
	credMgr *keystore.Manager, convStore *storage.ConversationStore) *Model {

	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	credInput := textinput.New()
	credInput.Placeholder = "sk-..."
	credInput.Prompt = "API key: "
	credInput.EchoMode = textinput.EchoPassword
	credInput.EchoCharacter = '*'

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	statusBar := components.NewStatusBar(theme)
	statusBar.ModelName = cfg.API.Model
	statusBar.Persisted = credMgr.Persisting()

	welcome := components.NewWelcome(theme, Version)
	welcome.ModelName = cfg.API.Model
	welcome.HasKey = credMgr.HasCredential()

	renderer := components.NewMessageRenderer(theme, 80, cfg.UI.Markdown)
	if cfg.UI.SyntaxTheme != "" {
		renderer.SyntaxTheme = cfg.UI.SyntaxTheme
	}

	m := &Model{
		cfg:         cfg,
		theme:       theme,
		keys:        DefaultKeyMap(),
		client:      client,
		dispatcher:  d,
		credMgr:     credMgr,
		convStore:   convStore,
		input:       input,
		credInput:   credInput,
		spin:        spin,
		statusBar:   statusBar,
		welcome:     welcome,
		renderer:    renderer,
		credPersist: credMgr.Persisting(),
	}
	m.syncStatus()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// syncStatus recomputes the status bar from dispatcher and credential state.
func (m *Model) syncStatus() {
	switch {
	case m.waiting:
		m.statusBar.Status = components.StatusWaiting
	case !m.credMgr.HasCredential():
		m.statusBar.Status = components.StatusNoCredential
	case m.dispatcher.LastError() != "":
		m.statusBar.Status = components.StatusError
	default:
		m.statusBar.Status = components.StatusReady
	}
	m.statusBar.Persisted = m.credMgr.Persisting()
	m.welcome.HasKey = m.credMgr.HasCredential()
}

// refreshViewport re-renders the transcript into the viewport and follows
// the tail.
func (m *Model) refreshViewport() {
	msgs := m.dispatcher.Messages()
	content := m.renderer.Render(msgs)

	if m.lastFailedTurn != "" {
		content += "\n" + m.renderer.RenderFailedDetail(m.dispatcher.LastError())
	}

	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// saveConversation persists the transcript if storage is enabled.
func (m *Model) saveConversation() {
	if m.convStore == nil || !m.cfg.Storage.SaveConversations {
		return
	}
	conv := m.dispatcher.Conversation()
	if conv.IsEmpty() {
		return
	}
	// Best effort; a failed save must not break the session.
	_ = m.convStore.Save(conv)
}
