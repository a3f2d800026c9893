package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"examseal/internal/domain"
	"examseal/internal/util/memzero"
)

const (
	// Algorithm tags the sealed format. Decrypt refuses anything else before
	// touching the ciphertext.
	Algorithm = "AES-256-GCM"

	keyBytes   = 32
	ivBytes    = 12
	keyVersion = 1

	aadSeparator = "|"
)

// Service owns the answer key lifecycle and all seal/open operations. The key
// is loaded from (or lazily created in) the secure key store and cached behind
// a mutex; it is read-mostly and written only at creation or removal.
type Service struct {
	store   domain.KeyStore
	service string
	account string
	clk     clock.Clock

	mu  sync.Mutex
	key []byte
}

// New returns an encryption engine addressing its key in store under the
// (service, account) pair.
func New(store domain.KeyStore, service, account string, clk clock.Clock) *Service {
	return &Service{store: store, service: service, account: account, clk: clk}
}

// EnsureKey creates a cryptographically random 256-bit key if the store holds
// none. A present key is left untouched; calling this twice is a no-op.
func (s *Service) EnsureKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.loadKeyLocked()
	if errors.Is(err, domain.ErrKeyNotFound) {
		return s.createKeyLocked()
	}
	return err
}

// Encrypt seals the UTF-8 bytes of plaintext under a fresh random IV, binding
// sessionID and questionID as additional authenticated data. Empty plaintext
// is valid and round-trips to an empty string.
func (s *Service) Encrypt(plaintext, questionID, sessionID string) (domain.EncryptedAnswer, error) {
	key, err := s.obtainKey()
	if err != nil {
		return domain.EncryptedAnswer{}, err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return domain.EncryptedAnswer{}, err
	}

	iv := make([]byte, ivBytes)
	if _, err := rand.Read(iv); err != nil {
		return domain.EncryptedAnswer{}, fmt.Errorf("generate IV: %w", err)
	}
	sealed := aead.Seal(nil, iv, []byte(plaintext), aad(sessionID, questionID))

	return domain.EncryptedAnswer{
		QuestionID: questionID,
		SessionID:  sessionID,
		Payload:    sealed,
		Metadata: domain.EncryptionMetadata{
			IV:         iv,
			Algorithm:  Algorithm,
			KeyVersion: keyVersion,
			CreatedAt:  s.clk.Now(),
		},
	}, nil
}

// Decrypt opens a sealed answer with the stored key and recorded IV. An
// unsupported algorithm tag fails fast with no decryption attempt. Any
// tampering with the payload or the bound identifiers surfaces as
// domain.ErrDecryptionFailed, never as corrupted plaintext.
func (s *Service) Decrypt(answer domain.EncryptedAnswer) (string, error) {
	if answer.Metadata.Algorithm != Algorithm {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedAlgorithm, answer.Metadata.Algorithm)
	}
	if len(answer.Metadata.IV) != ivBytes {
		return "", fmt.Errorf("%w: bad IV length %d", domain.ErrDecryptionFailed, len(answer.Metadata.IV))
	}

	// Decryption never creates a key: without the original key the payload is
	// unrecoverable anyway.
	key, err := s.currentKey()
	if err != nil {
		return "", err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, answer.Metadata.IV, answer.Payload, aad(answer.SessionID, answer.QuestionID))
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// RemoveKey deletes the stored key and drops the cached copy. Absence of a key
// is not an error. Anything sealed under the removed key becomes
// unrecoverable.
func (s *Service) RemoveKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		memzero.Zero(s.key)
		s.key = nil
	}
	return s.store.Delete(s.service, s.account)
}

// obtainKey returns the cached key, loading or lazily creating it.
func (s *Service) obtainKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.loadKeyLocked()
	if errors.Is(err, domain.ErrKeyNotFound) {
		if err := s.createKeyLocked(); err != nil {
			return nil, err
		}
		return s.key, nil
	}
	return key, err
}

// currentKey returns the cached or stored key without creating one.
func (s *Service) currentKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadKeyLocked()
}

func (s *Service) loadKeyLocked() ([]byte, error) {
	if s.key != nil {
		return s.key, nil
	}
	key, err := s.store.Get(s.service, s.account)
	if err != nil {
		return nil, err
	}
	if len(key) != keyBytes {
		return nil, &domain.KeyStoreError{Op: "get", Err: fmt.Errorf("stored key has %d bytes, want %d", len(key), keyBytes)}
	}
	s.key = key
	return key, nil
}

func (s *Service) createKeyLocked() error {
	key := make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	if err := s.store.Set(s.service, s.account, key); err != nil {
		return err
	}
	s.key = key
	return nil
}

// aad builds the additional authenticated data binding a ciphertext to its
// originating session and question.
func aad(sessionID, questionID string) []byte {
	return []byte(sessionID + aadSeparator + questionID)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Compile-time assertion that Service implements domain.Sealer.
var _ domain.Sealer = (*Service)(nil)
