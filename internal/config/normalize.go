package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeUpload()
	c.normalizeFormats()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv("GOTRANSCRIBE_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = strings.TrimSpace(value)
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeTranscription() error {
	for _, key := range []string{"GROQ_API_KEY", "OPENAI_API_KEY"} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			c.Transcription.APIKey = value
			break
		}
	}
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = defaultTranscriptionBaseURL
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.ResponseFormat = strings.ToLower(strings.TrimSpace(c.Transcription.ResponseFormat))
	if c.Transcription.ResponseFormat == "" {
		c.Transcription.ResponseFormat = defaultResponseFormat
	}
	lang, err := NormalizeLanguage(c.Transcription.Language)
	if err != nil {
		return fmt.Errorf("transcription.language: %w", err)
	}
	c.Transcription.Language = lang
	return nil
}

func (c *Config) normalizeUpload() {
	seen := make(map[string]struct{}, len(c.Upload.AllowedExtensions))
	exts := make([]string, 0, len(c.Upload.AllowedExtensions))
	for _, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Upload.AllowedExtensions = exts
}

func (c *Config) normalizeFormats() {
	c.Formats.VTTSynthesis = strings.ToLower(strings.TrimSpace(c.Formats.VTTSynthesis))
	if c.Formats.VTTSynthesis == "" {
		c.Formats.VTTSynthesis = defaultVTTSynthesis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// NormalizeLanguage reduces a BCP-47 tag such as "en-US" to the ISO-639-1
// base ("en") expected by speech-to-text endpoints. Empty input means
// automatic detection and is returned unchanged.
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", value, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("language %q has no base language", value)
	}
	return base.String(), nil
}
