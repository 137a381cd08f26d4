// Package preflight runs environment checks before a job starts: directory
// permissions, input readability, and the external tools the configured
// engines need. `songshift check` renders these results as a table.
package preflight
