// Package keystore implements the secure key store contract.
//
// Two backends are provided:
//
//   - Keyring delegates to the operating system keychain and is the default.
//   - File keeps keys in passphrase-sealed files for hosts without a usable
//     keychain (headless machines, CI).
//
// Both address a single symmetric secret by a (service, account) pair and
// report a missing key as domain.ErrKeyNotFound, so the encryption engine can
// tell "create one" apart from "the store is broken".
package keystore
