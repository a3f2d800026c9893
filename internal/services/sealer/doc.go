// Package sealer is the encryption engine guarding answer confidentiality.
//
// Answers are sealed with AES-256-GCM under a single locally held symmetric
// key from the secure key store. The session and question identifiers are
// bound into the additional authenticated data, so a captured ciphertext
// cannot be relocated to another question or session without detection. Every
// seal draws a fresh random 96-bit IV; GCM's security collapses under IV reuse
// with the same key, so IVs are never derived from a counter.
package sealer
