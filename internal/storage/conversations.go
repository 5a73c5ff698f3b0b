// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides persistent conversation storage.
//
// Conversations are stored as individual JSON files under the skiff data
// directory. Writes are atomic so a crash mid-save never corrupts an
// existing transcript.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/skiff-tui/internal/model"
	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// MaxSavedConversations caps how many transcripts are kept; the oldest
// are pruned when a save pushes the count over the cap.
const MaxSavedConversations = 100

// ConversationStore manages saved conversations on disk.
type ConversationStore struct {
	dir string
}

// ConversationSummary is a lightweight listing entry.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewConversationStore creates a store rooted at dir, creating it if needed.
func NewConversationStore(dir string) (*ConversationStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversation directory: %w", err)
	}
	return &ConversationStore{dir: dir}, nil
}

// DefaultDir returns the default conversation directory (~/.skiff/conversations).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".skiff", "conversations"), nil
}

// path returns the file path for a conversation ID.
func (s *ConversationStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes a conversation to disk.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func (s *ConversationStore) Save(conv *model.Conversation) error {
	if conv.ID == "" {
		return fmt.Errorf("conversation has no ID")
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := util.AtomicWriteFilePrivate(s.path(conv.ID), data); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}

	s.pruneOldest()
	return nil
}

// pruneOldest deletes the oldest conversations beyond the cap.
// Pruning is best effort; a failed listing never fails the save.
func (s *ConversationStore) pruneOldest() {
	summaries, err := s.List()
	if err != nil || len(summaries) <= MaxSavedConversations {
		return
	}
	for _, old := range summaries[MaxSavedConversations:] {
		_ = s.Delete(old.ID)
	}
}

// Load reads a conversation by ID.
func (s *ConversationStore) Load(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation %s: %w", id, err)
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Delete removes a saved conversation. Deleting an absent ID is not an error.
func (s *ConversationStore) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}

// List returns summaries of all saved conversations, newest first.
func (s *ConversationStore) List() ([]ConversationSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation directory: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.Load(id)
		if err != nil {
			// Skip unreadable files rather than failing the whole listing.
			continue
		}

		summaries = append(summaries, ConversationSummary{
			ID:           conv.ID,
			Title:        conv.DisplayTitle(),
			Model:        conv.Model,
			MessageCount: conv.Len(),
			UpdatedAt:    conv.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Search returns summaries of conversations whose title or message content
// contains the query, case-insensitively.
func (s *ConversationStore) Search(query string) ([]ConversationSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.List()
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}

	matches := make([]ConversationSummary, 0)
	for _, summary := range all {
		if strings.Contains(strings.ToLower(summary.Title), query) {
			matches = append(matches, summary)
			continue
		}

		conv, err := s.Load(summary.ID)
		if err != nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.WireContent()), query) {
				matches = append(matches, summary)
				break
			}
		}
	}
	return matches, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as a markdown transcript.
func (s *ConversationStore) ExportMarkdown(id string) (string, error) {
	conv, err := s.Load(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.DisplayTitle())
	fmt.Fprintf(&b, "Model: %s  \n", conv.Model)
	fmt.Fprintf(&b, "Date: %s\n\n", conv.CreatedAt.Format("2006-01-02 15:04"))

	for _, msg := range conv.Messages {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", msg.Role.DisplayName(), msg.WireContent())
		if msg.Status == model.StatusFailed {
			b.WriteString("_This message was not answered (request failed)._\n\n")
		}
	}
	return b.String(), nil
}
