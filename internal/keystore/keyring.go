package keystore

import (
	"encoding/base64"
	"errors"

	gokeyring "github.com/zalando/go-keyring"

	"examseal/internal/domain"
)

// Keyring stores the answer key in the operating system keychain. The keychain
// only takes strings, so key bytes are base64-encoded on the way in.
type Keyring struct{}

// NewKeyring returns the OS keychain backed store.
func NewKeyring() *Keyring { return &Keyring{} }

func (k *Keyring) Get(service, account string) ([]byte, error) {
	encoded, err := gokeyring.Get(service, account)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, &domain.KeyStoreError{Op: "get", Err: err}
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// A mangled keychain entry is a store failure, not a missing key.
		return nil, &domain.KeyStoreError{Op: "get", Err: err}
	}
	return raw, nil
}

func (k *Keyring) Set(service, account string, key []byte) error {
	if err := gokeyring.Set(service, account, base64.StdEncoding.EncodeToString(key)); err != nil {
		return &domain.KeyStoreError{Op: "set", Err: err}
	}
	return nil
}

func (k *Keyring) Delete(service, account string) error {
	err := gokeyring.Delete(service, account)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return &domain.KeyStoreError{Op: "delete", Err: err}
	}
	return nil
}

// Compile-time assertion that Keyring implements domain.KeyStore.
var _ domain.KeyStore = (*Keyring)(nil)
