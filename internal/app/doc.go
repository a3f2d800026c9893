// Package app wires application dependencies for the CLI.
//
// It is the single composition root: it builds the key store, encryption
// engine, local store, backend client, network monitor, and submission
// orchestrator from Config, exposing them via the Wire struct for commands to
// use. Nothing else constructs services and there is no global registry.
package app
