// Package services defines shared utilities consumed by the pipeline stages
// and the external tool backends.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Failure markers plus the Wrap helper that give every error one of the
//     five failure kinds reported to callers.
//   - A small Executor abstraction and ClassifyExec so process failures from
//     ffmpeg, rubberband, spleeter, and demucs are classified identically.
//
// Backends live in subpackages and accept an Executor option so tests can run
// without the real tools installed.
package services
