// Package cli provides the interactive CrewDesk command-line client.
//
// It wires configuration, the local SQLite cache, API services and an
// interactive REPL. Typical flow: load config, open the cache, connect the
// remote client, and execute user commands until exit.
//
// Key features:
//   - Browse schools and their yearbook checklists
//   - View the day's schedule and record clock punches
//   - Submit, list and cancel time-off requests
//   - Join a conversation feed with live updates and optimistic sends
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
