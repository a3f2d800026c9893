package keystore_test

import (
	"bytes"
	"errors"
	"testing"

	"examseal/internal/domain"
	"examseal/internal/keystore"
)

func TestFile_SetGet_OK(t *testing.T) {
	dir := t.TempDir()
	var ks domain.KeyStore = keystore.NewFile(dir, "correct horse")

	key := bytes.Repeat([]byte{0x42}, 32)
	if err := ks.Set("examseal", "answer-key", key); err != nil {
		t.Fatalf("set key: %v", err)
	}

	got, err := ks.Get("examseal", "answer-key")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("key mismatch after load")
	}
}

func TestFile_MissingKey_NotFound(t *testing.T) {
	ks := keystore.NewFile(t.TempDir(), "pass")

	if _, err := ks.Get("examseal", "answer-key"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestFile_WrongPassphrase_Fails(t *testing.T) {
	dir := t.TempDir()

	if err := keystore.NewFile(dir, "correct").Set("examseal", "answer-key", make([]byte, 32)); err != nil {
		t.Fatalf("set key: %v", err)
	}

	_, err := keystore.NewFile(dir, "wrong").Get("examseal", "answer-key")
	if err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
	var kerr *domain.KeyStoreError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected KeyStoreError, got %v", err)
	}
}

func TestFile_Delete_Idempotent(t *testing.T) {
	ks := keystore.NewFile(t.TempDir(), "pass")

	if err := ks.Set("examseal", "answer-key", make([]byte, 32)); err != nil {
		t.Fatalf("set key: %v", err)
	}
	if err := ks.Delete("examseal", "answer-key"); err != nil {
		t.Fatalf("delete key: %v", err)
	}
	// Second delete must not report the absence as an error.
	if err := ks.Delete("examseal", "answer-key"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if _, err := ks.Get("examseal", "answer-key"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}
