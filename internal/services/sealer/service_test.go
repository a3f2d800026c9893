package sealer_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"

	"examseal/internal/domain"
	"examseal/internal/services/sealer"
)

// memStore is an in-memory key store for tests.
type memStore struct {
	mu   sync.Mutex
	keys map[string][]byte
	deny error // when set, every operation fails with this error
}

func newMemStore() *memStore { return &memStore{keys: make(map[string][]byte)} }

func (m *memStore) Get(service, account string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deny != nil {
		return nil, &domain.KeyStoreError{Op: "get", Err: m.deny}
	}
	key, ok := m.keys[service+"/"+account]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return key, nil
}

func (m *memStore) Set(service, account string, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deny != nil {
		return &domain.KeyStoreError{Op: "set", Err: m.deny}
	}
	m.keys[service+"/"+account] = append([]byte(nil), key...)
	return nil
}

func (m *memStore) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deny != nil {
		return &domain.KeyStoreError{Op: "delete", Err: m.deny}
	}
	delete(m.keys, service+"/"+account)
	return nil
}

func newEngine(t *testing.T) (*sealer.Service, *memStore) {
	t.Helper()
	ks := newMemStore()
	return sealer.New(ks, "examseal", "answer-key", clock.NewMock()), ks
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	engine, _ := newEngine(t)

	for _, plaintext := range []string{"the mitochondria", "", "answer with π and 日本語"} {
		sealed, err := engine.Encrypt(plaintext, "q1", "sess-1")
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}
		got, err := engine.Decrypt(sealed)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}
		if got != plaintext {
			t.Fatalf("round trip: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	engine, _ := newEngine(t)

	first, err := engine.Encrypt("same text", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := engine.Encrypt("same text", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if bytes.Equal(first.Metadata.IV, second.Metadata.IV) {
		t.Fatal("IV reused across two encryptions under the same key")
	}
	if bytes.Equal(first.Payload, second.Payload) {
		t.Fatal("identical sealed payloads for two encryptions")
	}
	for _, sealed := range []domain.EncryptedAnswer{first, second} {
		got, err := engine.Decrypt(sealed)
		if err != nil || got != "same text" {
			t.Fatalf("decrypt: got %q, %v", got, err)
		}
	}
}

func TestEncrypt_ConcurrentCallsUniqueIVs(t *testing.T) {
	engine, _ := newEngine(t)

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sealed, err := engine.Encrypt("concurrent", "q1", "sess-1")
			if err != nil {
				t.Errorf("encrypt: %v", err)
				return
			}
			mu.Lock()
			seen[string(sealed.Metadata.IV)] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != goroutines {
		t.Fatalf("got %d unique IVs from %d concurrent seals", len(seen), goroutines)
	}
}

func TestDecrypt_TamperedPayloadFails(t *testing.T) {
	engine, _ := newEngine(t)

	sealed, err := engine.Encrypt("original", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// A single flipped bit anywhere in ciphertext or tag must break
	// authentication.
	for _, pos := range []int{0, len(sealed.Payload) / 2, len(sealed.Payload) - 1} {
		tampered := sealed
		tampered.Payload = append([]byte(nil), sealed.Payload...)
		tampered.Payload[pos] ^= 0x01

		if _, err := engine.Decrypt(tampered); !errors.Is(err, domain.ErrDecryptionFailed) {
			t.Fatalf("bit flip at %d: want ErrDecryptionFailed, got %v", pos, err)
		}
	}
}

func TestDecrypt_RelabelledContextFails(t *testing.T) {
	engine, _ := newEngine(t)

	sealed, err := engine.Encrypt("bound", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	otherQuestion := sealed
	otherQuestion.QuestionID = "q2"
	if _, err := engine.Decrypt(otherQuestion); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("relabelled question: want ErrDecryptionFailed, got %v", err)
	}

	otherSession := sealed
	otherSession.SessionID = "sess-2"
	if _, err := engine.Decrypt(otherSession); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("relabelled session: want ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_UnsupportedAlgorithmFailsFast(t *testing.T) {
	engine, _ := newEngine(t)

	sealed, err := engine.Encrypt("text", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	sealed.Metadata.Algorithm = "AES-128-CBC"

	if _, err := engine.Decrypt(sealed); !errors.Is(err, domain.ErrUnsupportedAlgorithm) {
		t.Fatalf("want ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestEnsureKey_Idempotent(t *testing.T) {
	engine, ks := newEngine(t)

	if err := engine.EnsureKey(); err != nil {
		t.Fatalf("first EnsureKey: %v", err)
	}
	created := append([]byte(nil), ks.keys["examseal/answer-key"]...)
	if len(created) != 32 {
		t.Fatalf("created key has %d bytes, want 32", len(created))
	}

	if err := engine.EnsureKey(); err != nil {
		t.Fatalf("second EnsureKey: %v", err)
	}
	if !bytes.Equal(created, ks.keys["examseal/answer-key"]) {
		t.Fatal("EnsureKey replaced an existing key")
	}
}

func TestRemoveKey_Idempotent(t *testing.T) {
	engine, _ := newEngine(t)

	if err := engine.EnsureKey(); err != nil {
		t.Fatalf("EnsureKey: %v", err)
	}
	if err := engine.RemoveKey(); err != nil {
		t.Fatalf("RemoveKey: %v", err)
	}
	if err := engine.RemoveKey(); err != nil {
		t.Fatalf("repeat RemoveKey: %v", err)
	}
}

func TestDecrypt_AfterKeyRemovalReportsMissingKey(t *testing.T) {
	engine, _ := newEngine(t)

	sealed, err := engine.Encrypt("gone", "q1", "sess-1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := engine.RemoveKey(); err != nil {
		t.Fatalf("RemoveKey: %v", err)
	}

	if _, err := engine.Decrypt(sealed); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("want ErrKeyNotFound, got %v", err)
	}
}

func TestEncrypt_StoreDenialSurfacesKeyStoreError(t *testing.T) {
	ks := newMemStore()
	ks.deny = errors.New("keychain locked")
	engine := sealer.New(ks, "examseal", "answer-key", clock.NewMock())

	_, err := engine.Encrypt("text", "q1", "sess-1")
	var kerr *domain.KeyStoreError
	if !errors.As(err, &kerr) {
		t.Fatalf("want KeyStoreError, got %v", err)
	}
}
