package separator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"songshift/internal/pathplan"
	"songshift/internal/services"
)

const (
	EngineSpleeter = "spleeter"
	EngineDemucs   = "demucs"

	demucsStagingDir = ".demucs"
	demucsRestStem   = "no_vocals"
)

// Option configures the separator.
type Option func(*Separator)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(s *Separator) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithTimeout bounds each separation run. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Separator) { s.timeout = d }
}

// Separator invokes the configured separation engine.
type Separator struct {
	engine  string
	binary  string
	model   string
	exec    services.Executor
	timeout time.Duration
}

// New constructs a separator for engine ("spleeter" or "demucs").
func New(engine, binary, model string, opts ...Option) (*Separator, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	switch engine {
	case EngineSpleeter, EngineDemucs:
	default:
		return nil, fmt.Errorf("unsupported separation engine %q", engine)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("separator binary required")
	}
	s := &Separator{engine: engine, binary: binary, model: strings.TrimSpace(model), exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the engine name.
func (s *Separator) Engine() string { return s.engine }

// Separate splits input into vocals and accompaniment under outputDir and
// returns the stem paths keyed by stem name.
func (s *Separator) Separate(ctx context.Context, input, outputDir string, durationHint time.Duration) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrUnknown, "split", s.engine, "cancelled before separation", err)
	}
	stemDir := pathplan.SplitOutputDir(outputDir, pathplan.BaseName(input))

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var err error
	switch s.engine {
	case EngineDemucs:
		err = s.runDemucs(runCtx, input, stemDir)
	default:
		err = s.runSpleeter(runCtx, input, outputDir, durationHint)
	}
	if err != nil {
		return nil, err
	}
	return collectStems(stemDir)
}

func (s *Separator) runSpleeter(ctx context.Context, input, outputDir string, durationHint time.Duration) error {
	model := s.model
	if model == "" {
		model = "spleeter:2stems"
	}
	args := []string{"separate", "-p", model, "-o", outputDir, "-c", "wav", "-f", "{filename}/{instrument}.{codec}"}
	if durationHint > 0 {
		args = append(args, "-d", strconv.FormatFloat(durationHint.Seconds(), 'f', -1, 64))
	}
	args = append(args, input)
	stderr, err := s.exec.Run(ctx, s.binary, args)
	return services.ClassifyExec("split", s.binary, stderr, err)
}

func (s *Separator) runDemucs(ctx context.Context, input, stemDir string) error {
	staging := filepath.Join(stemDir, demucsStagingDir)
	defer os.RemoveAll(staging)

	args := []string{"--two-stems=" + pathplan.StemVocals, "-o", staging, "--filename", "{stem}.{ext}"}
	if s.model != "" {
		args = append(args, "-n", s.model)
	}
	args = append(args, input)
	stderr, err := s.exec.Run(ctx, s.binary, args)
	if err := services.ClassifyExec("split", s.binary, stderr, err); err != nil {
		return err
	}

	// demucs nests output under a directory named after the model.
	modelDirs, err := os.ReadDir(staging)
	if err != nil {
		return services.Wrap(services.ErrUnknown, "split", s.binary, "read demucs output", err)
	}
	var produced string
	for _, entry := range modelDirs {
		if entry.IsDir() {
			produced = filepath.Join(staging, entry.Name())
			break
		}
	}
	if produced == "" {
		return services.Wrap(services.ErrUnknown, "split", s.binary, "demucs produced no output", nil)
	}

	moves := map[string]string{
		pathplan.StemVocals: pathplan.StemVocals,
		demucsRestStem:      pathplan.StemAccompaniment,
	}
	for from, to := range moves {
		src := filepath.Join(produced, from+".wav")
		if err := os.Rename(src, pathplan.StemPath(stemDir, to)); err != nil {
			return services.Wrap(services.ErrUnknown, "split", s.binary, "move demucs stem "+from, err)
		}
	}
	return nil
}

func collectStems(stemDir string) (map[string]string, error) {
	stems := make(map[string]string, len(pathplan.Stems))
	for _, stem := range pathplan.Stems {
		path := pathplan.StemPath(stemDir, stem)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, services.Wrap(services.ErrUnknown, "split", "collect", fmt.Sprintf("missing stem %s", path), err)
		}
		stems[stem] = path
	}
	return stems, nil
}
