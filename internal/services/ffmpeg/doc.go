// Package ffmpeg wraps the ffmpeg CLI for audio transcoding and decoding.
//
// The codec table maps each supported output format to its encoder and
// bitrate arguments. Every invocation strips metadata, drops video, and
// forces the configured channel count. Errors are classified through
// services.ClassifyExec so callers can tell a missing binary from a failed run.
package ffmpeg
