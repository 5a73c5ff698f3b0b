// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// DefaultErrorLimit bounds the length of error text recorded on a
	// failed turn, in runes.
	DefaultErrorLimit = 200

	// EmptyReplyPlaceholder is recorded when the API returns a well-formed
	// response with no choices, so the turn still completes visibly.
	EmptyReplyPlaceholder = "(no response)"
)

var (
	// ErrEmptyMessage indicates the input was empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy indicates a turn is already in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrNoCredential indicates no API credential is configured.
	ErrNoCredential = errors.New("no API credential configured")

	// ErrNotResendable indicates the turn is not in the failed state.
	ErrNotResendable = errors.New("turn is not resendable")

	// ErrStale indicates the conversation was reset while the request
	// was in flight; the completion was discarded.
	ErrStale = errors.New("conversation was reset; reply discarded")
)

// ChatService is the slice of the API client the dispatcher needs.
type ChatService interface {
	Chat(ctx context.Context, messages []api.ChatMessage) (*api.ChatResponse, error)
	IsConfigured() bool
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Result reports the outcome of a completed turn.
type Result struct {
	RequestID string
	TurnID    string         // ID of the user message this turn answered
	Reply     *model.Message // Assistant reply; nil if the turn failed
	Err       string         // Truncated error text recorded on failure
}

// Dispatcher owns the conversation and serializes turns against the API.
//
// Send and Resend block for the duration of the HTTP request; callers that
// need asynchrony (the TUI) wrap them in a command. All conversation access
// goes through the dispatcher's lock.
type Dispatcher struct {
	mu         sync.Mutex
	conv       *model.Conversation
	client     ChatService
	inFlight   bool
	generation uint64
	errLimit   int
	greeting   string
	lastError  string
}

// New creates a dispatcher over an empty conversation.
func New(client ChatService, modelName string) *Dispatcher {
	return NewSeeded(client, modelName, "")
}

// NewSeeded creates a dispatcher whose conversation opens with an assistant
// greeting. Reset restores the same greeting.
func NewSeeded(client ChatService, modelName, greeting string) *Dispatcher {
	return &Dispatcher{
		conv:     model.NewSeededConversation(modelName, greeting),
		client:   client,
		errLimit: DefaultErrorLimit,
		greeting: greeting,
	}
}

// WithErrorLimit overrides the recorded-error length bound.
func (d *Dispatcher) WithErrorLimit(limit int) *Dispatcher {
	if limit > 0 {
		d.errLimit = limit
	}
	return d
}

// Conversation returns the live conversation. Read it via Snapshot while a
// turn may be in flight.
func (d *Dispatcher) Conversation() *model.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conv
}

// Messages returns a stable snapshot of the transcript.
func (d *Dispatcher) Messages() []*model.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conv.Snapshot()
}

// InFlight reports whether a turn is currently awaiting the API.
func (d *Dispatcher) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// LastError returns the truncated error text of the most recent failed
// turn, or empty if the last turn succeeded.
func (d *Dispatcher) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

// Reset discards the conversation and starts a fresh one with the same
// greeting. Any in-flight completion becomes stale and is discarded when
// it arrives.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.inFlight = false
	d.lastError = ""
	d.conv = model.NewSeededConversation(d.conv.Model, d.greeting)
}

// =============================================================================
// TURN DISPATCH
// =============================================================================

// Send dispatches one user turn.
//
// The trimmed text must be non-empty, no other turn may be in flight, and a
// credential must be configured; otherwise nothing is appended and the
// precondition error is returned. The user message is appended before the
// request goes out, so a failed turn stays visible in the transcript with a
// failed status and can be resent.
func (d *Dispatcher) Send(ctx context.Context, text string) (*Result, error) {
	text = strings.TrimSpace(text)

	d.mu.Lock()
	if text == "" {
		d.mu.Unlock()
		return nil, ErrEmptyMessage
	}
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	if !d.client.IsConfigured() {
		d.mu.Unlock()
		return nil, ErrNoCredential
	}

	msg := model.NewUserMessage(text)
	d.conv.Append(msg)
	d.inFlight = true
	d.lastError = ""
	gen := d.generation
	wire := d.conv.ToWireMessages()
	d.mu.Unlock()

	return d.dispatch(ctx, msg.ID, gen, wire)
}

// SendParts dispatches one user turn built from multiple input lines.
// The parts are carried separately on the message and joined with
// newlines on the wire. The same preconditions as Send apply, judged
// against the joined text.
func (d *Dispatcher) SendParts(ctx context.Context, parts []string) (*Result, error) {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed = append(trimmed, strings.TrimRight(p, " \t"))
	}

	d.mu.Lock()
	if strings.TrimSpace(strings.Join(trimmed, "")) == "" {
		d.mu.Unlock()
		return nil, ErrEmptyMessage
	}
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	if !d.client.IsConfigured() {
		d.mu.Unlock()
		return nil, ErrNoCredential
	}

	msg := model.NewUserMessageParts(trimmed...)
	d.conv.Append(msg)
	d.inFlight = true
	d.lastError = ""
	gen := d.generation
	wire := d.conv.ToWireMessages()
	d.mu.Unlock()

	return d.dispatch(ctx, msg.ID, gen, wire)
}

// Resend re-dispatches a failed turn without appending a new message.
// The full transcript, including the failed turn, is sent again.
func (d *Dispatcher) Resend(ctx context.Context, turnID string) (*Result, error) {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	if !d.client.IsConfigured() {
		d.mu.Unlock()
		return nil, ErrNoCredential
	}

	msg := d.conv.FindMessage(turnID)
	if msg == nil || msg.Status != model.StatusFailed {
		d.mu.Unlock()
		return nil, ErrNotResendable
	}

	msg.Status = model.StatusPending
	d.inFlight = true
	d.lastError = ""
	gen := d.generation
	wire := d.conv.ToWireMessages()
	d.mu.Unlock()

	return d.dispatch(ctx, turnID, gen, wire)
}

// dispatch performs the single API request for a turn and records the
// outcome on the turn's user message.
func (d *Dispatcher) dispatch(ctx context.Context, turnID string, gen uint64, wire []api.ChatMessage) (*Result, error) {
	requestID := uuid.NewString()
	log.Printf("dispatch: request %s turn %s (%d messages)", requestID, turnID, len(wire))

	resp, err := d.client.Chat(ctx, wire)

	d.mu.Lock()
	defer d.mu.Unlock()

	// A Reset while the request was in flight bumped the generation; the
	// conversation this turn belonged to is gone. Drop the completion.
	if gen != d.generation {
		log.Printf("dispatch: request %s stale, discarding", requestID)
		return nil, ErrStale
	}

	d.inFlight = false

	if err != nil {
		d.lastError = util.TruncateRunes(err.Error(), d.errLimit)
		d.conv.SetStatus(turnID, model.StatusFailed)
		log.Printf("dispatch: request %s failed: %s", requestID, d.lastError)
		return &Result{RequestID: requestID, TurnID: turnID, Err: d.lastError}, err
	}

	content := resp.GetContent()
	if !resp.HasContent() {
		content = EmptyReplyPlaceholder
	}

	reply := model.NewAssistantMessage(content)
	d.conv.Append(reply)
	d.conv.SetStatus(turnID, model.StatusAnswered)
	d.lastError = ""

	return &Result{RequestID: requestID, TurnID: turnID, Reply: reply}, nil
}
