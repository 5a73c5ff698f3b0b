// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keystore provides persistent storage for the API credential.
//
// The credential occupies a single well-known slot in an injected key/value
// store. Callers never touch the store directly: the Manager owns the slot,
// keeps an in-memory copy for the running session, and writes through to the
// store only while persistence is enabled. Values at rest are sealed with
// AES-256-GCM under a key derived from a per-install master secret.
package keystore
