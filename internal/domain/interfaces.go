package domain

import "context"

// KeyStore is an OS-trusted holder of one symmetric secret, addressed by a
// stable (service, account) pair. It must protect the key at rest
// independently of this process.
type KeyStore interface {
	// Get returns the stored key, or ErrKeyNotFound when absent.
	Get(service, account string) ([]byte, error)
	Set(service, account string, key []byte) error
	// Delete removes the key. Absence is not an error.
	Delete(service, account string) error
}

// Sealer is the encryption engine guarding answer confidentiality and
// integrity. Implementations own the get-or-create key workflow.
type Sealer interface {
	// EnsureKey creates the symmetric key if none exists. Idempotent.
	EnsureKey() error
	// Encrypt seals the UTF-8 bytes of plaintext, binding sessionID and
	// questionID as additional authenticated data. Empty plaintext is valid
	// and round-trips to an empty string.
	Encrypt(plaintext, questionID, sessionID string) (EncryptedAnswer, error)
	// Decrypt opens a sealed answer. It rejects unsupported algorithm tags
	// before attempting decryption, and fails with ErrDecryptionFailed on any
	// tampering.
	Decrypt(answer EncryptedAnswer) (string, error)
	// RemoveKey deletes the stored key. Idempotent.
	RemoveKey() error
}

// AnswerStore persists sealed answers in the backing store.
type AnswerStore interface {
	SaveBatch(ctx context.Context, sessionID string, answers []EncryptedAnswer) error
	List(ctx context.Context, sessionID string) ([]EncryptedAnswer, error)
	Has(ctx context.Context, sessionID, questionID string) (bool, error)
}

// AnswerQueue durably holds sealed answers on the client until the backing
// store acknowledges them.
type AnswerQueue interface {
	Enqueue(ctx context.Context, answers []EncryptedAnswer) error
	Pending(ctx context.Context, sessionID string) ([]EncryptedAnswer, error)
	Clear(ctx context.Context, sessionID string) error
}

// SessionStore mirrors session status transitions to the backing store. The
// in-memory state machine stays the source of truth; remote persistence is a
// side effect.
type SessionStore interface {
	Update(ctx context.Context, session ExamSession) (ExamSession, error)
}

// NetworkStatusProvider reports backend reachability. It is consulted only to
// decide whether to attempt remote persistence eagerly.
type NetworkStatusProvider interface {
	Status() NetworkStatus
	// Subscribe delivers status changes. Sends never block the provider; slow
	// consumers may miss intermediate values.
	Subscribe() <-chan NetworkStatus
}
