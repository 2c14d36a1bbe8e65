package config

const (
	defaultConfigPath           = "~/.config/gotranscribe/config.toml"
	projectConfigName           = "gotranscribe.toml"
	defaultDataDir              = "~/.local/share/gotranscribe"
	defaultLogDir               = "~/.local/share/gotranscribe/logs"
	defaultOutputDir            = "~/transcripts"
	defaultWorkDir              = "~/.cache/gotranscribe/work"
	defaultAPIBind              = "127.0.0.1:7488"
	defaultTranscriptionBaseURL = "https://api.groq.com/openai/v1"
	defaultTranscriptionModel   = "whisper-large-v3"
	defaultResponseFormat       = "verbose_json"
	defaultTranscriptionTimeout = 300
	defaultTranscriptionRetries = 3
	defaultUploadMaxBytes       = 25 * 1024 * 1024
	defaultFFmpegBinary         = "ffmpeg"
	defaultSampleRate           = 16000
	defaultChannels             = 1
	defaultVTTSynthesis         = "single"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

var defaultAllowedExtensions = []string{
	".mp4", ".mov", ".mkv", ".webm", ".avi", ".m4v",
	".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg", ".opus",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			APIBind:   defaultAPIBind,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			ResponseFormat: defaultResponseFormat,
			TimeoutSeconds: defaultTranscriptionTimeout,
			RetryAttempts:  defaultTranscriptionRetries,
		},
		Upload: Upload{
			MaxBytes:          defaultUploadMaxBytes,
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
		},
		Media: Media{
			FFmpegBinary: defaultFFmpegBinary,
			SampleRate:   defaultSampleRate,
			Channels:     defaultChannels,
		},
		Formats: Formats{
			VTTSynthesis: defaultVTTSynthesis,
			WriteTXT:     true,
			WriteSRT:     true,
			WriteVTT:     true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
