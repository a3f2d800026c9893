// Package store is the client-side durable store backed by SQLite.
//
// It holds three things: sealed answer drafts (answers are encrypted the
// moment they are captured, so plaintext never rests on disk), the pending
// submission queue consumed by the orchestrator's flush pass, and a snapshot
// of the active session so a restarted client can resume where it left off.
package store
