package workflow

import (
	"fmt"
	"log/slog"

	"songshift/internal/archive"
	"songshift/internal/config"
	"songshift/internal/logging"
	"songshift/internal/media/ffprobe"
	"songshift/internal/pipeline"
	"songshift/internal/services"
	"songshift/internal/services/ffmpeg"
	"songshift/internal/services/rubberband"
	"songshift/internal/services/separator"
)

// NewBackends builds the production backends selected by cfg. exec, when
// non-nil, replaces the process runner for every external tool.
func NewBackends(cfg *config.Config, logger *slog.Logger, exec services.Executor) (pipeline.Backends, error) {
	if cfg == nil {
		return pipeline.Backends{}, fmt.Errorf("config required")
	}
	logger = logging.NewComponentLogger(logger, "backends")

	ff, err := ffmpeg.New(cfg.FFmpegBinary(),
		ffmpeg.WithExecutor(exec),
		ffmpeg.WithBitrates(ffmpeg.Bitrates{
			WebM: cfg.Transcode.BitrateWebM,
			MP3:  cfg.Transcode.BitrateMP3,
			AAC:  cfg.Transcode.BitrateAAC,
		}),
		ffmpeg.WithChannels(cfg.Transcode.Channels),
		ffmpeg.WithTimeout(config.Timeout(cfg.Timeouts.TranscodeSeconds)),
	)
	if err != nil {
		return pipeline.Backends{}, fmt.Errorf("ffmpeg: %w", err)
	}

	var shifter pipeline.PitchShifter
	switch cfg.Pitch.Engine {
	case config.PitchEngineFFmpeg:
		shifter, err = rubberband.NewFilter(ff)
	default:
		shifter, err = rubberband.NewCLI(cfg.RubberbandBinary(), ff,
			rubberband.WithExecutor(exec),
			rubberband.WithTimeout(config.Timeout(cfg.Timeouts.PitchSeconds)),
		)
	}
	if err != nil {
		return pipeline.Backends{}, fmt.Errorf("pitch engine: %w", err)
	}

	sep, err := separator.New(cfg.Separation.Engine, cfg.SeparatorBinary(), cfg.Separation.Model,
		separator.WithExecutor(exec),
		separator.WithTimeout(config.Timeout(cfg.Timeouts.SeparationSeconds)),
	)
	if err != nil {
		return pipeline.Backends{}, fmt.Errorf("separator: %w", err)
	}

	logger.Debug("backends configured",
		logging.String("pitch_engine", cfg.Pitch.Engine),
		logging.String("separation_engine", sep.Engine()),
		logging.String("ffmpeg", ff.Binary()),
	)

	return pipeline.Backends{
		Pitch:      shifter,
		Separator:  sep,
		Transcoder: ff,
		Archiver:   archive.Zipper{},
		Prober:     ffprobe.Prober{Binary: cfg.FFprobeBinary()},
	}, nil
}
