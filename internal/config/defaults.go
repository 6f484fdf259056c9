package config

const (
	defaultLibraryDir     = "~/audiobooks"
	defaultStagingDir     = "~/.local/share/bookbinder/staging"
	defaultLogDir         = "~/.local/share/bookbinder/logs"
	defaultStateDir       = "~/.local/share/bookbinder/state"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultMuxTimeout     = 7200
	defaultAudioBitrate   = "64k"
	defaultLookupBaseURL  = "https://openlibrary.org"
	defaultLookupTimeout  = 15
	defaultMinSizeRatio   = 0.5
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			MuxTimeout:    defaultMuxTimeout,
			AudioBitrate:  defaultAudioBitrate,
		},
		Lookup: Lookup{
			Enabled:        true,
			BaseURL:        defaultLookupBaseURL,
			RequestTimeout: defaultLookupTimeout,
		},
		Cleanup: Cleanup{
			DeleteOriginals: false,
			MinSizeRatio:    defaultMinSizeRatio,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
