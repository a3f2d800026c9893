package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the key and cryptographic taxonomy. Key-store failures
// are kept apart from cryptographic failures so callers can decide between
// regenerating a key and treating the ciphertext itself as corrupted.
var (
	// ErrKeyNotFound means the secure key store holds no key under the
	// addressed (service, account) pair. Recoverable by creating a new key,
	// at the cost of invalidating anything sealed under the old one.
	ErrKeyNotFound = errors.New("encryption key not found")

	// ErrDecryptionFailed means authentication of the sealed payload failed:
	// the ciphertext, tag, or bound identifiers were tampered with or
	// corrupted. Never retried; repeating a failed authenticated decryption
	// cannot succeed.
	ErrDecryptionFailed = errors.New("decryption failed: data corrupted or tampered")

	// ErrUnsupportedAlgorithm means the recorded algorithm tag does not match
	// the supported one. A format or version mismatch, not corruption.
	ErrUnsupportedAlgorithm = errors.New("unsupported encryption algorithm")
)

// KeyStoreError is an OS-level secure storage failure (denial, backend
// unavailable, mangled entry). Fatal to the current operation.
type KeyStoreError struct {
	Op  string // "get", "set", "delete"
	Err error
}

func (e *KeyStoreError) Error() string { return fmt.Sprintf("key store %s: %v", e.Op, e.Err) }

func (e *KeyStoreError) Unwrap() error { return e.Err }

// StateError reports an illegal session transition. These indicate a
// caller-side invariant violation and must surface loudly, never be silently
// ignored.
type StateError struct {
	Op   string // attempted transition
	From SessionStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal transition %q from session status %q", e.Op, e.From)
}
