// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keystore

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// CREDENTIAL MANAGER
// =============================================================================

// CredentialSlot is the single store key that holds the API credential.
const CredentialSlot = "api_key"

// PersistSlot records whether the user opted in to credential persistence.
const PersistSlot = "api_key_persist"

// Manager owns the credential slot.
//
// The credential always lives in memory for the running session. The store
// only ever holds it while persistence is enabled: enabling with a non-empty
// credential writes immediately, disabling deletes the slot, and every
// credential change while enabled writes through.
type Manager struct {
	mu      sync.Mutex
	store   Store
	sealer  *Sealer
	cred    string
	persist bool
}

// NewManager creates a manager over the given store and sealer, loading any
// previously persisted credential into memory.
//
// A slot value that fails to unseal (master secret rotated, tampered blob)
// is treated as absent and removed so it cannot shadow a fresh credential.
func NewManager(store Store, sealer *Sealer) (*Manager, error) {
	m := &Manager{store: store, sealer: sealer}

	if flag, ok, err := store.Get(PersistSlot); err != nil {
		return nil, fmt.Errorf("failed to read persistence flag: %w", err)
	} else if ok {
		m.persist = flag == "1"
	}

	sealed, ok, err := store.Get(CredentialSlot)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential slot: %w", err)
	}
	if ok {
		cred, err := sealer.Unseal(sealed)
		if err != nil {
			store.Delete(CredentialSlot)
		} else {
			m.cred = cred
		}
	}

	return m, nil
}

// Credential returns the in-memory credential, or empty if none is set.
func (m *Manager) Credential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}

// HasCredential returns true if a credential is set for this session.
func (m *Manager) HasCredential() bool {
	return m.Credential() != ""
}

// Persisting returns true if write-through persistence is enabled.
func (m *Manager) Persisting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist
}

// SetCredential updates the session credential. While persistence is
// enabled, a non-empty credential is written through immediately and an
// empty one clears the slot.
func (m *Manager) SetCredential(cred string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cred = strings.TrimSpace(cred)
	if !m.persist {
		return nil
	}
	return m.syncSlotLocked()
}

// SetPersistence toggles write-through persistence.
//
// Enabling with a credential already in memory writes it immediately;
// disabling removes the credential from the store but keeps it in memory
// for the rest of the session.
func (m *Manager) SetPersistence(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persist = enabled
	flag := "0"
	if enabled {
		flag = "1"
	}
	if err := m.store.Set(PersistSlot, flag); err != nil {
		return fmt.Errorf("failed to record persistence flag: %w", err)
	}

	if !enabled {
		if err := m.store.Delete(CredentialSlot); err != nil {
			return fmt.Errorf("failed to clear credential slot: %w", err)
		}
		return nil
	}
	return m.syncSlotLocked()
}

// Clear wipes the credential from memory and from the store.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cred = ""
	if err := m.store.Delete(CredentialSlot); err != nil {
		return fmt.Errorf("failed to clear credential slot: %w", err)
	}
	return nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// syncSlotLocked writes the current credential to the store, or clears the
// slot if the credential is empty. Caller holds m.mu.
func (m *Manager) syncSlotLocked() error {
	if m.cred == "" {
		if err := m.store.Delete(CredentialSlot); err != nil {
			return fmt.Errorf("failed to clear credential slot: %w", err)
		}
		return nil
	}

	sealed, err := m.sealer.Seal(m.cred)
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}
	if err := m.store.Set(CredentialSlot, sealed); err != nil {
		return fmt.Errorf("failed to write credential slot: %w", err)
	}
	return nil
}
