// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strings"
	"testing"

	"github.com/jeranaias/skiff-tui/internal/model"
)

func testStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewConversationStore failed: %v", err)
	}
	return store
}

func sampleConversation() *model.Conversation {
	conv := model.NewSeededConversation("test-model", "welcome")
	user := model.NewUserMessage("how do goroutines work?")
	conv.Append(user)
	conv.Append(model.NewAssistantMessage("they are lightweight threads"))
	conv.SetStatus(user.ID, model.StatusAnswered)
	return conv
}

// =============================================================================
// SAVE / LOAD TESTS
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	store := testStore(t)
	conv := sampleConversation()

	if err := store.Save(conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID != conv.ID {
		t.Errorf("ID = %s, want %s", loaded.ID, conv.ID)
	}
	if loaded.Len() != conv.Len() {
		t.Fatalf("message count = %d, want %d", loaded.Len(), conv.Len())
	}
	for i, msg := range loaded.Messages {
		orig := conv.Messages[i]
		if msg.Role != orig.Role || msg.Content != orig.Content || msg.Status != orig.Status {
			t.Errorf("message %d = %+v, want %+v", i, msg, orig)
		}
	}
}

func TestSave_RequiresID(t *testing.T) {
	store := testStore(t)
	conv := sampleConversation()
	conv.ID = ""
	if err := store.Save(conv); err == nil {
		t.Error("expected error for conversation without ID")
	}
}

func TestLoad_Missing(t *testing.T) {
	store := testStore(t)
	if _, err := store.Load("conv_missing"); err == nil {
		t.Error("expected error for missing conversation")
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	conv := sampleConversation()
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(conv.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(conv.ID); err == nil {
		t.Error("conversation still loadable after delete")
	}

	// Deleting again is fine.
	if err := store.Delete(conv.ID); err != nil {
		t.Errorf("second delete errored: %v", err)
	}
}

// =============================================================================
// LIST / SEARCH TESTS
// =============================================================================

func TestList_NewestFirst(t *testing.T) {
	store := testStore(t)

	old := model.NewConversation("m")
	old.ID = "conv_old"
	old.Append(model.NewUserMessage("old question"))

	recent := model.NewConversation("m")
	recent.ID = "conv_recent"
	recent.Append(model.NewUserMessage("recent question"))
	recent.UpdatedAt = old.UpdatedAt.Add(1e9)

	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(recent); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "conv_recent" {
		t.Errorf("first summary = %s, want conv_recent", summaries[0].ID)
	}
}

func TestSearch(t *testing.T) {
	store := testStore(t)

	conv := model.NewConversation("m")
	conv.ID = "conv_go"
	conv.Append(model.NewUserMessage("tell me about Goroutines"))
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	other := model.NewConversation("m")
	other.ID = "conv_other"
	other.Append(model.NewUserMessage("unrelated topic"))
	if err := store.Save(other); err != nil {
		t.Fatal(err)
	}

	// Case-insensitive content match.
	matches, err := store.Search("goroutine")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "conv_go" {
		t.Errorf("matches = %+v", matches)
	}

	// Empty query lists everything.
	all, err := store.Search("  ")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("empty query returned %d, want 2", len(all))
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	store := testStore(t)
	conv := sampleConversation()

	failed := model.NewUserMessage("this one failed")
	conv.Append(failed)
	conv.SetStatus(failed.ID, model.StatusFailed)

	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	md, err := store.ExportMarkdown(conv.ID)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	for _, want := range []string{
		"# how do goroutines work?",
		"## You",
		"## Assistant",
		"they are lightweight threads",
		"request failed",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("export missing %q:\n%s", want, md)
		}
	}
}
