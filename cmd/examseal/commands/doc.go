// Package commands defines the examseal CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init    Provision the answer encryption key
//   - start   Begin an exam session
//   - answer  Record (or clear) an answer for a question
//   - submit  Seal and submit all answers
//   - flush   Retry a submission that is parked pending
//   - status  Show the active session
//   - watch   Run the countdown and network monitor until the session settles
//   - reset   Wipe local state and remove the encryption key
//
// # Implementation
//
// The root command builds a dependency graph (key store, sealer, local store,
// backend client, submission service) before any subcommand runs, so handlers
// share one app context. Answers are encrypted the moment they are recorded;
// plaintext only exists in memory.
package commands
