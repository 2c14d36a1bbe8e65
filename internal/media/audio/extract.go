package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"gotranscribe/internal/logging"
	"gotranscribe/internal/media/codec"
)

// OutputName is the file written into the work directory.
const OutputName = "audio.wav"

// Options controls the decoded audio format.
type Options struct {
	SampleRate int
	Channels   int
}

// DefaultOptions returns 16 kHz mono.
func DefaultOptions() Options {
	return Options{SampleRate: 16000, Channels: 1}
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// Extractor runs ffmpeg to produce a WAV file from arbitrary media.
type Extractor struct {
	loader *codec.Loader
	opts   Options
	logger *slog.Logger
	run    commandRunner
}

// NewExtractor builds an extractor backed by loader.
func NewExtractor(loader *codec.Loader, opts Options, logger *slog.Logger) *Extractor {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultOptions().SampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultOptions().Channels
	}
	return &Extractor{
		loader: loader,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "audio"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner injects a custom command runner (primarily for tests).
func (e *Extractor) WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) {
	if r != nil {
		e.run = r
	}
}

// Extract decodes source into workDir/audio.wav and returns the output path.
func (e *Extractor) Extract(ctx context.Context, source, workDir string) (string, error) {
	if e == nil || e.loader == nil {
		return "", errors.New("extract audio: extractor not configured")
	}
	if strings.TrimSpace(source) == "" {
		return "", errors.New("extract audio: empty source path")
	}
	ffmpeg, err := e.loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("extract audio: create work dir: %w", err)
	}
	dest := filepath.Join(workDir, OutputName)
	args := BuildArgs(source, dest, e.opts)

	logging.WithContext(ctx, e.logger).Debug("extracting audio",
		logging.String("command", ffmpeg.Path),
		logging.String("args", strings.Join(args, " ")),
	)
	if err := e.run(ctx, ffmpeg.Path, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract: %w", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return "", fmt.Errorf("ffmpeg extract: output missing: %w", err)
	}
	if info.Size() == 0 {
		return "", errors.New("ffmpeg extract: output is empty")
	}
	return dest, nil
}

// BuildArgs returns the ffmpeg arguments used to extract the audio track.
func BuildArgs(source, dest string, opts Options) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(opts.SampleRate),
		"-ac", strconv.Itoa(opts.Channels),
		dest,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
