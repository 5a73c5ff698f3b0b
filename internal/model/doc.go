// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is an append-only, chronologically ordered sequence of
// Messages owned by a single session. User messages carry a turn status
// (pending, answered, failed) so the request lifecycle is explicit instead
// of being inferred from array position. The package also provides the
// conversion from the internal representation to the wire format expected
// by the chat-completion API.
package model
