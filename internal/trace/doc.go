// Package trace collects and presents the moves of a sort.
//
// Log is the in-memory recorder the CLI and harness hand to the switcher.
// Tee fans moves out to several recorders, typically a Log and the SQLite
// recorder from package store. Render prints an action table.
package trace
