package ffmpeg

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"songshift/internal/pathplan"
	"songshift/internal/services"
)

const defaultChannels = 2

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBitrates overrides the encoder bitrates.
func WithBitrates(b Bitrates) Option {
	return func(c *Client) { c.bitrates = b }
}

// WithChannels overrides the output channel count.
func WithChannels(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.channels = n
		}
	}
}

// WithTimeout bounds each ffmpeg invocation. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary   string
	bitrates Bitrates
	channels int
	timeout  time.Duration
	exec     services.Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:   binary,
		bitrates: DefaultBitrates(),
		channels: defaultChannels,
		exec:     services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// Transcode converts input to output using the codec table entry for format.
func (c *Client) Transcode(ctx context.Context, input, output string, format pathplan.Format) error {
	codec, err := CodecArgs(format, c.bitrates)
	if err != nil {
		return err
	}
	args := c.preamble(input)
	args = append(args, "-ac", strconv.Itoa(c.channels), "-vn", "-map_metadata", "-1")
	args = append(args, codec...)
	args = append(args, output)
	return c.run(ctx, "transcode", args)
}

// DecodePCM24 decodes input to a 24-bit PCM WAV file.
func (c *Client) DecodePCM24(ctx context.Context, input, output string) error {
	args := c.preamble(input)
	args = append(args, "-vn", "-acodec", "pcm_s24le", output)
	return c.run(ctx, "decode", args)
}

// Filter applies an audio filter graph and writes a 24-bit PCM WAV file.
func (c *Client) Filter(ctx context.Context, input, output, filterGraph string) error {
	args := c.preamble(input)
	args = append(args, "-vn", "-af", filterGraph, "-acodec", "pcm_s24le", output)
	return c.run(ctx, "filter", args)
}

func (c *Client) preamble(input string) []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", input}
}

func (c *Client) run(ctx context.Context, stage string, args []string) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	stderr, err := c.exec.Run(runCtx, c.binary, args)
	return services.ClassifyExec(stage, c.binary, stderr, err)
}
