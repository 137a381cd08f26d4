// Package history persists one row per song job in a SQLite database so
// past runs can be listed with their outcome, failure kind, and deliverables.
//
// The database is opened per invocation; WAL mode and a busy timeout let
// concurrent songshift processes record jobs against the same file.
package history
