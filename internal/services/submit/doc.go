// Package submit coordinates the encrypted-answer submission pipeline.
//
// The ordering is strict: seal every answer first, persist the batch with
// retry second, and only then flip the session status. A session is therefore
// never marked submitted while answers remain unsent, and an encryption
// failure is never masked as a network failure. When the network stays down,
// the session parks in submission-pending with the sealed batch durably queued
// client-side; connectivity problems are never reported to the test-taker as a
// hard failure.
package submit
