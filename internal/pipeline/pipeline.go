package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gotranscribe/internal/config"
	"gotranscribe/internal/fileutil"
	"gotranscribe/internal/history"
	"gotranscribe/internal/logging"
	"gotranscribe/internal/media/audio"
	"gotranscribe/internal/media/codec"
	"gotranscribe/internal/services"
	"gotranscribe/internal/services/stt"
	"gotranscribe/internal/transcript"
	"gotranscribe/internal/upload"
)

// Stage names attached to the context of each step.
const (
	StageGuard      = "guard"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageValidate   = "validate"
	StageFormat     = "format"
	StageWrite      = "write"
)

// Extractor produces an audio file for the speech-to-text endpoint.
type Extractor interface {
	Extract(ctx context.Context, source, workDir string) (string, error)
}

// Transcriber sends audio to a speech-to-text endpoint.
type Transcriber interface {
	Transcribe(ctx context.Context, req stt.Request) (transcript.Response, error)
}

// Pipeline wires the guard, extractor, transcriber, formatter, and history store.
type Pipeline struct {
	cfg         *config.Config
	store       *history.Store
	guard       upload.Guard
	loader      *codec.Loader
	extractor   Extractor
	transcriber Transcriber
	formatter   transcript.Formatter
	logger      *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithExtractor replaces the ffmpeg-backed extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithTranscriber replaces the HTTP speech-to-text client.
func WithTranscriber(t Transcriber) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.transcriber = t
		}
	}
}

// WithLoader shares a codec loader across pipelines.
func WithLoader(l *codec.Loader) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.loader = l
		}
	}
}

// New builds a pipeline from configuration.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	if store == nil {
		return nil, errors.New("pipeline requires history store")
	}
	mode, err := transcript.ParseVTTMode(cfg.Formats.VTTSynthesis)
	if err != nil {
		return nil, fmt.Errorf("formats.vtt_synthesis: %w", err)
	}
	p := &Pipeline{
		cfg:       cfg,
		store:     store,
		guard:     upload.NewGuard(cfg),
		formatter: transcript.Formatter{VTTMode: mode},
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loader == nil {
		p.loader = codec.NewLoader(cfg.FFmpegBinary())
	}
	if p.extractor == nil {
		p.extractor = audio.NewExtractor(p.loader, audio.Options{
			SampleRate: cfg.Media.SampleRate,
			Channels:   cfg.Media.Channels,
		}, logger)
	}
	if p.transcriber == nil {
		p.transcriber = stt.NewClient(stt.ConfigFrom(cfg), stt.WithRetryMaxAttempts(cfg.Transcription.RetryAttempts))
	}
	return p, nil
}

// Formatter returns the formatter used for subtitle outputs.
func (p *Pipeline) Formatter() transcript.Formatter {
	return p.formatter
}

// Guard returns the upload guard.
func (p *Pipeline) Guard() upload.Guard {
	return p.guard
}

// CodecState reports the ffmpeg loader state.
func (p *Pipeline) CodecState() codec.State {
	return p.loader.State()
}

// Options tunes a single run.
type Options struct {
	// Name is the user-facing file name; defaults to the source base name.
	Name string
	// OutputDir overrides paths.output_dir. Use NoOutput to skip writing files.
	OutputDir string
	NoOutput  bool
	// Formats overrides the configured output formats.
	Formats  []string
	Language string
	Model    string
}

// Output describes a finished run.
type Output struct {
	Job      *history.Job
	Response transcript.Response
	// Files maps format to written path.
	Files map[string]string
}

// Result returns the formatter input for the run.
func (o *Output) Result() transcript.Result {
	return o.Response.Result()
}

// Run transcribes source. The job is recorded even when an early stage fails;
// the returned Output carries it in that case too.
func (p *Pipeline) Run(ctx context.Context, source string, opts Options) (*Output, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = filepath.Base(source)
	}
	var size int64
	if info, err := os.Stat(source); err == nil {
		size = info.Size()
	}
	outputDir := ""
	if !opts.NoOutput {
		outputDir = firstNonEmpty(opts.OutputDir, p.cfg.Paths.OutputDir)
	}

	job, err := p.store.Create(ctx, history.NewJob{
		ID:        uuid.NewString(),
		Source:    name,
		Model:     firstNonEmpty(opts.Model, p.cfg.Transcription.Model),
		Language:  firstNonEmpty(opts.Language, p.cfg.Transcription.Language),
		SizeBytes: size,
		OutputDir: outputDir,
	})
	if err != nil {
		return nil, fmt.Errorf("record job: %w", err)
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("transcription started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source", name),
		logging.Int64("size_bytes", size),
	)
	started := time.Now()

	out := &Output{Job: job}
	if err := p.run(ctx, source, name, outputDir, opts, out); err != nil {
		return out, p.fail(ctx, job, err)
	}

	resp := out.Response
	if err := p.store.Complete(ctx, job.ID, history.Outcome{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: resp.Segments,
	}); err != nil {
		return out, fmt.Errorf("record completion: %w", err)
	}
	if refreshed, err := p.store.Get(ctx, job.ID); err == nil && refreshed != nil {
		out.Job = refreshed
	}

	logger.Info("transcription completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("segments", len(resp.Segments)),
		logging.Float64("media_seconds", resp.Duration),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("files", len(out.Files)),
	)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, source, name, outputDir string, opts Options, out *Output) error {
	if _, err := p.guard.CheckFile(source); err != nil {
		return services.Wrap(services.ErrValidation, StageGuard, "check", "", err)
	}

	workDir := filepath.Join(p.cfg.Paths.WorkDir, "job-"+out.Job.ID)
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logging.WithContext(ctx, p.logger).Warn("work dir cleanup failed",
				logging.String("path", workDir),
				logging.Error(err),
			)
		}
	}()

	extractCtx := services.WithStage(ctx, StageExtract)
	audioPath, err := p.extractor.Extract(extractCtx, source, workDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrExternalTool, StageExtract, "ffmpeg", "audio extraction failed", err)
	}

	transcribeCtx := services.WithStage(ctx, StageTranscribe)
	resp, err := p.transcriber.Transcribe(transcribeCtx, stt.Request{
		AudioPath: audioPath,
		Language:  opts.Language,
		Model:     opts.Model,
	})
	if err != nil {
		return err
	}

	if err := transcript.ValidateSegments(resp.Segments); err != nil {
		return services.Wrap(services.ErrValidation, StageValidate, "segments", "", err)
	}
	out.Response = resp

	if outputDir == "" {
		return nil
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = p.cfg.OutputFormats()
	}
	rendered, err := p.render(out.Job, resp, formats)
	if err != nil {
		return services.Wrap(services.ErrValidation, StageFormat, "render", "", err)
	}

	writeCtx := services.WithStage(ctx, StageWrite)
	files, err := p.write(writeCtx, outputDir, fileutil.OutputStem(name), rendered)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageWrite, "outputs", "", err)
	}
	out.Files = files
	return nil
}

func (p *Pipeline) render(job *history.Job, resp transcript.Response, formats []string) (map[string]string, error) {
	result := resp.Result()
	rendered := make(map[string]string, len(formats))
	for _, format := range formats {
		if format == FormatJSON {
			body, err := renderDocument(Document{
				ID:       job.ID,
				Source:   job.Source,
				Model:    job.Model,
				Language: firstNonEmpty(resp.Language, job.Language),
				Duration: resp.Duration,
				Text:     resp.Text,
				Segments: resp.Segments,
			})
			if err != nil {
				return nil, err
			}
			rendered[format] = body
			continue
		}
		body, err := Render(p.formatter, format, resp.Text, result)
		if err != nil {
			return nil, err
		}
		rendered[format] = body
	}
	return rendered, nil
}

func (p *Pipeline) write(ctx context.Context, dir, base string, rendered map[string]string) (map[string]string, error) {
	unlock, err := fileutil.LockDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	files := make(map[string]string, len(rendered))
	for _, format := range Formats() {
		body, ok := rendered[format]
		if !ok {
			continue
		}
		path := filepath.Join(dir, base+"."+format)
		if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
			return files, fmt.Errorf("write %s: %w", format, err)
		}
		files[format] = path
		logging.WithContext(ctx, p.logger).Debug("transcript written",
			logging.String("format", format),
			logging.String("path", path),
		)
	}
	return files, nil
}

func (p *Pipeline) fail(ctx context.Context, job *history.Job, err error) error {
	status := services.FailureStatus(err)
	message := strings.TrimSpace(err.Error())
	if errors.Is(err, context.Canceled) {
		message = "cancelled"
	}

	// Record the failure even when the caller's context is cancelled.
	recordCtx := context.WithoutCancel(ctx)
	if recErr := p.store.Fail(recordCtx, job.ID, status, message); recErr != nil {
		logging.WithContext(ctx, p.logger).Error("failed to record job failure", logging.Error(recErr))
	}
	job.Status = status
	job.ErrorMessage = message

	logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "transcription failed", "job_failure",
		logging.String("resolved_status", string(status)),
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.Error(err),
	)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
