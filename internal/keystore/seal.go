// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/skiff-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks a stored value as sealed (format: ENC:base64(salt|nonce|ciphertext)).
const SealedPrefix = "ENC:"

// keySize is the AES-256 key size (32 bytes).
const keySize = 32

// saltSize is the per-value PBKDF2 salt size.
const saltSize = 16

// pbkdf2Iterations follows the OWASP 2023 recommendation for PBKDF2-SHA-256.
const pbkdf2Iterations = 600000

var (
	// ErrSealedFormat indicates the stored value is not a valid sealed blob.
	ErrSealedFormat = errors.New("invalid sealed value format")

	// ErrUnsealFailed indicates decryption failed (wrong key or tampered data).
	ErrUnsealFailed = errors.New("unseal failed: authentication tag mismatch")
)

// ZeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts and decrypts credential values with AES-256-GCM.
//
// The cipher key is derived per value with PBKDF2-SHA-256 from a
// per-install master secret and a random salt stored alongside the
// ciphertext.
type Sealer struct {
	master []byte
}

// NewSealer creates a sealer from an existing master secret.
func NewSealer(master []byte) *Sealer {
	return &Sealer{master: master}
}

// LoadOrCreateSealer loads the master secret from path, generating and
// persisting a new one on first run. The secret file is created owner-only.
func LoadOrCreateSealer(path string) (*Sealer, error) {
	master, err := os.ReadFile(path)
	if err == nil && len(master) == keySize {
		return NewSealer(master), nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master secret: %w", err)
	}

	master = make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, master); err != nil {
		return nil, fmt.Errorf("failed to generate master secret: %w", err)
	}
	if err := util.AtomicWriteFilePrivate(path, master); err != nil {
		return nil, fmt.Errorf("failed to store master secret: %w", err)
	}
	return NewSealer(master), nil
}

// Seal encrypts plaintext and returns an ENC: prefixed blob safe to store.
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key(s.master, salt, pbkdf2Iterations, keySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+len(nonce)+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return SealedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// Unseal decrypts an ENC: prefixed blob produced by Seal.
func (s *Sealer) Unseal(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, SealedPrefix) {
		return "", ErrSealedFormat
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", ErrSealedFormat
	}
	if len(blob) < saltSize {
		return "", ErrSealedFormat
	}

	key := pbkdf2.Key(s.master, blob[:saltSize], pbkdf2Iterations, keySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(blob) < saltSize+gcm.NonceSize() {
		return "", ErrSealedFormat
	}
	nonce := blob[saltSize : saltSize+gcm.NonceSize()]
	ciphertext := blob[saltSize+gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}
