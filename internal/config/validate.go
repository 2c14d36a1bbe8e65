package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gotranscribe/internal/transcript"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateFormats(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	parsed, err := url.Parse(c.Transcription.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("transcription.base_url must be an absolute URL, got %q", c.Transcription.BaseURL)
	}
	if c.Transcription.Model == "" {
		return errors.New("transcription.model must be set")
	}
	switch c.Transcription.ResponseFormat {
	case "json", "verbose_json":
	default:
		return fmt.Errorf("transcription.response_format must be json or verbose_json, got %q", c.Transcription.ResponseFormat)
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	if c.Transcription.RetryAttempts <= 0 {
		return errors.New("transcription.retry_attempts must be positive")
	}
	return nil
}

// RequireAPIKey reports a configuration error when no speech-to-text key is
// available. Only commands that call the endpoint need one.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Transcription.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("transcription.api_key is required. Set GROQ_API_KEY env var or edit %s (create with 'gotranscribe config init')", defaultPath)
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("upload.allowed_extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if strings.TrimSpace(c.Media.FFmpegBinary) == "" {
		return errors.New("media.ffmpeg_binary must be set")
	}
	if c.Media.SampleRate <= 0 {
		return errors.New("media.sample_rate must be positive")
	}
	if c.Media.Channels <= 0 {
		return errors.New("media.channels must be positive")
	}
	return nil
}

func (c *Config) validateFormats() error {
	if _, err := transcript.ParseVTTMode(c.Formats.VTTSynthesis); err != nil {
		return fmt.Errorf("formats.vtt_synthesis: %w", err)
	}
	if len(c.OutputFormats()) == 0 {
		return errors.New("formats: at least one of write_txt, write_srt, write_vtt, write_json must be enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
