// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/skiff-tui/internal/api"
	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// FAKE CHAT SERVICE
// =============================================================================

type fakeChat struct {
	mu           sync.Mutex
	calls        int
	unconfigured bool
	reply        string
	noChoices    bool
	err          error
	block        chan struct{} // when non-nil, Chat waits until closed
	gotWire      [][]api.ChatMessage
}

func (f *fakeChat) IsConfigured() bool {
	return !f.unconfigured
}

func (f *fakeChat) Chat(ctx context.Context, messages []api.ChatMessage) (*api.ChatResponse, error) {
	f.mu.Lock()
	f.calls++
	wire := make([]api.ChatMessage, len(messages))
	copy(wire, messages)
	f.gotWire = append(f.gotWire, wire)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}

	var resp api.ChatResponse
	if !f.noChoices {
		body := `{"choices": [{"message": {"role": "assistant", "content": ` + mustJSON(f.reply) + `}}]}`
		json.Unmarshal([]byte(body), &resp)
	}
	return &resp, nil
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// =============================================================================
// PRECONDITION TESTS
// =============================================================================

func TestSend_EmptyInputRejected(t *testing.T) {
	fake := &fakeChat{reply: "ok"}
	d := New(fake, "m")

	for _, input := range []string{"", "   ", "\n\t "} {
		_, err := d.Send(context.Background(), input)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q) err = %v, want ErrEmptyMessage", input, err)
		}
	}

	if d.Conversation().Len() != 0 {
		t.Error("rejected input must not append anything")
	}
	if fake.callCount() != 0 {
		t.Error("rejected input must not reach the API")
	}
}

func TestSend_NoCredentialRejected(t *testing.T) {
	fake := &fakeChat{unconfigured: true}
	d := New(fake, "m")

	_, err := d.Send(context.Background(), "hello")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
	if d.Conversation().Len() != 0 {
		t.Error("missing credential must not append anything")
	}
}

func TestSend_BusyRejected(t *testing.T) {
	fake := &fakeChat{reply: "ok", block: make(chan struct{})}
	d := New(fake, "m")

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Send(context.Background(), "first")
	}()

	waitForInFlight(t, d)

	_, err := d.Send(context.Background(), "second")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}
	if d.Conversation().Len() != 1 {
		t.Errorf("rejected turn appended a message: len %d", d.Conversation().Len())
	}

	close(fake.block)
	<-done

	if fake.callCount() != 1 {
		t.Errorf("API called %d times, want 1", fake.callCount())
	}
}

// =============================================================================
// TURN LIFECYCLE TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	fake := &fakeChat{reply: "the answer"}
	d := New(fake, "m")

	res, err := d.Send(context.Background(), "the question")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := d.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "the question" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[0].Status != model.StatusAnswered {
		t.Errorf("turn status = %v, want answered", msgs[0].Status)
	}
	if msgs[1].Role != model.RoleAssistant || msgs[1].Content != "the answer" {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if res.Reply == nil || res.Reply.ID != msgs[1].ID {
		t.Error("result does not reference the appended reply")
	}
	if d.InFlight() {
		t.Error("in-flight flag not cleared after success")
	}
	if fake.callCount() != 1 {
		t.Errorf("API called %d times, want exactly 1", fake.callCount())
	}
}

func TestSend_OptimisticAppendBeforeRequest(t *testing.T) {
	fake := &fakeChat{reply: "ok", block: make(chan struct{})}
	d := New(fake, "m")

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Send(context.Background(), "hello")
	}()

	waitForInFlight(t, d)

	// While the request is still in flight the user turn is already
	// visible, in the pending state.
	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages while in flight, want 1", len(msgs))
	}
	if msgs[0].Status != model.StatusPending {
		t.Errorf("status = %v, want pending", msgs[0].Status)
	}

	close(fake.block)
	<-done
}

func TestSend_TranscriptSentVerbatim(t *testing.T) {
	fake := &fakeChat{reply: "second answer"}
	d := NewSeeded(fake, "m", "welcome")

	if _, err := d.Send(context.Background(), "first"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := d.Send(context.Background(), "second"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// Second request carries greeting, first turn, first reply, second turn.
	wire := fake.gotWire[1]
	want := []api.ChatMessage{
		{Role: api.RoleAssistant, Content: "welcome"},
		{Role: api.RoleUser, Content: "first"},
		{Role: api.RoleAssistant, Content: "second answer"},
		{Role: api.RoleUser, Content: "second"},
	}
	if len(wire) != len(want) {
		t.Fatalf("wire length %d, want %d", len(wire), len(want))
	}
	for i := range want {
		if wire[i] != want[i] {
			t.Errorf("wire[%d] = %+v, want %+v", i, wire[i], want[i])
		}
	}
}

func TestSend_EmptyChoicesYieldsPlaceholder(t *testing.T) {
	// A well-formed response with no choices still completes the turn;
	// the transcript shows a placeholder instead of a silent gap.
	fake := &fakeChat{noChoices: true}
	d := New(fake, "m")

	res, err := d.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res.Reply.Content != EmptyReplyPlaceholder {
		t.Errorf("reply = %q, want placeholder", res.Reply.Content)
	}
	if d.Messages()[0].Status != model.StatusAnswered {
		t.Error("turn should count as answered")
	}
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestSend_FailureMarksTurnFailed(t *testing.T) {
	fake := &fakeChat{err: errors.New("connection refused")}
	d := New(fake, "m")

	res, err := d.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want only the user turn", len(msgs))
	}
	if msgs[0].Status != model.StatusFailed {
		t.Errorf("status = %v, want failed", msgs[0].Status)
	}
	if res.Err == "" || !strings.Contains(res.Err, "connection refused") {
		t.Errorf("recorded error = %q", res.Err)
	}
	if d.InFlight() {
		t.Error("in-flight flag not cleared after failure")
	}
}

func TestSend_ErrorTextTruncated(t *testing.T) {
	long := strings.Repeat("x", 5000)
	fake := &fakeChat{err: errors.New(long)}
	d := New(fake, "m")

	_, _ = d.Send(context.Background(), "hello")

	if n := util.RuneLen(d.LastError()); n > DefaultErrorLimit {
		t.Errorf("recorded error is %d runes, bound is %d", n, DefaultErrorLimit)
	}

	d2 := New(&fakeChat{err: errors.New(long)}, "m").WithErrorLimit(50)
	_, _ = d2.Send(context.Background(), "hello")
	if n := util.RuneLen(d2.LastError()); n > 50 {
		t.Errorf("recorded error is %d runes, custom bound is 50", n)
	}
}

func TestSend_SuccessClearsLastError(t *testing.T) {
	fake := &fakeChat{err: errors.New("boom")}
	d := New(fake, "m")
	_, _ = d.Send(context.Background(), "hello")
	if d.LastError() == "" {
		t.Fatal("expected recorded error")
	}

	fake.err = nil
	fake.reply = "recovered"
	turnID := d.Messages()[0].ID
	if _, err := d.Resend(context.Background(), turnID); err != nil {
		t.Fatalf("Resend failed: %v", err)
	}
	if d.LastError() != "" {
		t.Errorf("lastError = %q after success", d.LastError())
	}
}

// =============================================================================
// RESEND TESTS
// =============================================================================

func TestResend_OnlyFailedTurns(t *testing.T) {
	fake := &fakeChat{reply: "ok"}
	d := New(fake, "m")

	res, err := d.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// Answered turns are not resendable, nor are unknown IDs.
	if _, err := d.Resend(context.Background(), res.TurnID); !errors.Is(err, ErrNotResendable) {
		t.Errorf("resend of answered turn: err = %v", err)
	}
	if _, err := d.Resend(context.Background(), "msg_unknown"); !errors.Is(err, ErrNotResendable) {
		t.Errorf("resend of unknown turn: err = %v", err)
	}
}

func TestResend_FailedTurnRecovers(t *testing.T) {
	fake := &fakeChat{err: errors.New("temporary")}
	d := New(fake, "m")

	_, _ = d.Send(context.Background(), "hello")
	turnID := d.Messages()[0].ID

	fake.err = nil
	fake.reply = "recovered"

	res, err := d.Resend(context.Background(), turnID)
	if err != nil {
		t.Fatalf("Resend failed: %v", err)
	}
	if res.Reply.Content != "recovered" {
		t.Errorf("reply = %q", res.Reply.Content)
	}

	msgs := d.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2 (no duplicate user turn)", len(msgs))
	}
	if msgs[0].Status != model.StatusAnswered {
		t.Errorf("status = %v, want answered", msgs[0].Status)
	}
	if fake.callCount() != 2 {
		t.Errorf("API called %d times, want 2", fake.callCount())
	}
}

// =============================================================================
// RESET AND STALE COMPLETION TESTS
// =============================================================================

func TestReset_RestoresGreeting(t *testing.T) {
	fake := &fakeChat{reply: "ok"}
	d := NewSeeded(fake, "m", "welcome")

	_, _ = d.Send(context.Background(), "hello")
	d.Reset()

	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages after reset, want greeting only", len(msgs))
	}
	if msgs[0].Role != model.RoleAssistant || msgs[0].Content != "welcome" {
		t.Errorf("greeting = %+v", msgs[0])
	}
	if d.LastError() != "" || d.InFlight() {
		t.Error("reset must clear error and in-flight state")
	}
}

func TestReset_StaleCompletionDiscarded(t *testing.T) {
	fake := &fakeChat{reply: "late answer", block: make(chan struct{})}
	d := NewSeeded(fake, "m", "welcome")

	results := make(chan error, 1)
	go func() {
		_, err := d.Send(context.Background(), "before reset")
		results <- err
	}()

	waitForInFlight(t, d)
	d.Reset()

	// New turn on the fresh conversation is allowed immediately.
	if d.InFlight() {
		t.Error("reset must clear the in-flight gate")
	}

	close(fake.block)
	if err := <-results; !errors.Is(err, ErrStale) {
		t.Errorf("stale send err = %v, want ErrStale", err)
	}

	// The late reply must not have landed in the new conversation.
	for _, msg := range d.Messages() {
		if msg.Content == "late answer" || msg.Content == "before reset" {
			t.Errorf("stale turn leaked into new conversation: %+v", msg)
		}
	}
}

func TestSendParts_JoinsOnWire(t *testing.T) {
	fake := &fakeChat{reply: "ok"}
	d := New(fake, "m")

	result, err := d.SendParts(context.Background(), []string{"first line", "second line"})
	if err != nil {
		t.Fatalf("SendParts: %v", err)
	}
	if result.Reply == nil {
		t.Fatal("no reply")
	}

	// One transcript entry per message, with the parts joined by newlines.
	wire := fake.gotWire[0]
	if len(wire) != 1 {
		t.Fatalf("wire has %d messages, want 1", len(wire))
	}
	if wire[0].Content != "first line\nsecond line" {
		t.Errorf("wire content = %q", wire[0].Content)
	}

	msgs := d.Messages()
	if msgs[0].Content != "first line" || len(msgs[0].Parts) != 1 {
		t.Errorf("message parts not preserved: %+v", msgs[0])
	}
}

func TestSendParts_AllBlankRejected(t *testing.T) {
	fake := &fakeChat{reply: "ok"}
	d := New(fake, "m")

	_, err := d.SendParts(context.Background(), []string{"  ", "\t"})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
	if d.Conversation().Len() != 0 {
		t.Error("rejected turn must not append anything")
	}
}

// waitForInFlight polls until the dispatcher reports an in-flight turn.
func waitForInFlight(t *testing.T, d *Dispatcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.InFlight() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("dispatcher never entered in-flight state")
}
