// Package memzero provides best-effort clearing of sensitive byte slices.
package memzero

// Zero overwrites b so key material does not linger in memory longer than
// needed. Best effort only; the runtime may have copied the slice already.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
