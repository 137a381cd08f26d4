// Package workflow drives a single song job end to end for the CLI: it
// prepares and locks the output directory, builds the configured backends,
// runs the pipeline, and records the outcome in the job history.
package workflow
