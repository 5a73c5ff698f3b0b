// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch coordinates the turn lifecycle between the conversation
// and the chat-completion client.
//
// A turn is: append the user message optimistically, issue exactly one API
// request with the full transcript, then record the outcome on that same
// message (answered or failed). One turn may be in flight at a time; a
// generation counter makes completions from before a Reset inert instead of
// letting them land in the new conversation.
package dispatch
