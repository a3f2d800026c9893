package keystore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"examseal/internal/domain"
	"examseal/internal/util/memzero"
)

const (
	// The current supported version of the sealed blob format on disk.
	keyFileFormatVersion = 1
)

// blob is the on-disk JSON structure holding the sealed key and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// File is a fallback key store for hosts without a usable OS keychain. Each
// (service, account) key lives in its own file, sealed under a
// passphrase-derived key so it never rests on disk in the clear.
type File struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFile returns a file-backed key store rooted at dir.
func NewFile(dir, passphrase string) *File {
	return &File{dir: dir, passphrase: passphrase}
}

func (s *File) Get(service, account string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(s.path(service, account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, &domain.KeyStoreError{Op: "get", Err: err}
	}
	key, err := openBlob(s.passphrase, sealed)
	if err != nil {
		return nil, &domain.KeyStoreError{Op: "get", Err: err}
	}
	return key, nil
}

func (s *File) Set(service, account string, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return &domain.KeyStoreError{Op: "set", Err: err}
	}
	sealed, err := sealBlob(s.passphrase, key)
	if err != nil {
		return &domain.KeyStoreError{Op: "set", Err: err}
	}
	if err := writeFileAtomic(s.path(service, account), sealed, 0o600); err != nil {
		return &domain.KeyStoreError{Op: "set", Err: err}
	}
	return nil
}

func (s *File) Delete(service, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(service, account))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.KeyStoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *File) path(service, account string) string {
	return filepath.Join(s.dir, service+"."+account+".enc")
}

// sealBlob derives a key from the passphrase and seals raw into a JSON blob.
// The salt doubles as additional authenticated data; the salt-bound key makes
// the zero nonce safe.
func sealBlob(passphrase string, raw []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	N, r, p := scryptParamsDefault()
	kek, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(blob{V: keyFileFormatVersion, Salt: salt, N: N, R: r, P: p, Cipher: ct})
}

// openBlob opens the JSON blob using a key derived from the passphrase.
func openBlob(passphrase string, sealed []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(sealed, &bl); err != nil {
		return nil, err
	}
	if bl.V > keyFileFormatVersion {
		return nil, fmt.Errorf("unsupported key file version %d", bl.V)
	}
	kek, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	pt, err := aead.Open(nil, nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errors.New("wrong passphrase or corrupted key file")
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// writeFileAtomic writes bytes via a temp file, then atomically replaces the
// target.
func writeFileAtomic(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Compile-time assertion that File implements domain.KeyStore.
var _ domain.KeyStore = (*File)(nil)
