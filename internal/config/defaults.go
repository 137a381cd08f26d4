package config

// Engine names accepted in [pitch] and [separation].
const (
	PitchEngineRubberband = "rubberband"
	PitchEngineFFmpeg     = "ffmpeg"

	SeparationEngineSpleeter = "spleeter"
	SeparationEngineDemucs   = "demucs"
)

const (
	defaultConfigPath             = "~/.config/songshift/config.toml"
	defaultOutputDir              = "output"
	defaultLogDir                 = "~/.local/share/songshift/logs"
	defaultStateDir               = "~/.local/share/songshift"
	defaultHistoryFile            = "history.db"
	lockDirName                   = "locks"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultRubberbandBinary       = "rubberband"
	defaultSpleeterBinary         = "spleeter"
	defaultDemucsBinary           = "demucs"
	defaultSpleeterModel          = "spleeter:2stems"
	defaultDemucsModel            = "htdemucs"
	defaultSeparationDurationSecs = 600
	defaultBitrateWebM            = 160
	defaultBitrateMP3             = 192
	defaultBitrateAAC             = 192
	defaultChannels               = 2
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:     defaultFFmpegBinary,
			FFprobe:    defaultFFprobeBinary,
			Rubberband: defaultRubberbandBinary,
			Spleeter:   defaultSpleeterBinary,
			Demucs:     defaultDemucsBinary,
		},
		Pitch: Pitch{
			Engine: PitchEngineRubberband,
		},
		Separation: Separation{
			Engine:                 SeparationEngineSpleeter,
			DefaultDurationSeconds: defaultSeparationDurationSecs,
		},
		Transcode: Transcode{
			BitrateWebM: defaultBitrateWebM,
			BitrateMP3:  defaultBitrateMP3,
			BitrateAAC:  defaultBitrateAAC,
			Channels:    defaultChannels,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
