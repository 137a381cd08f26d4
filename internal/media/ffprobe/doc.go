// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: duration lookup used to size the separation window
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
