package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gotranscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Transcription.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "transcripts")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Transcription.RetryAttempts = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the speech-to-text API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.APIKey = key
	}
}

// WithBaseURL points the speech-to-text client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.BaseURL = url
	}
}

// FFmpegStubScript mimics ffmpeg: "-version" prints a banner, anything else
// writes a small file at the last argument, which is the output path.
const FFmpegStubScript = "#!/bin/sh\n" +
	"for last; do :; done\n" +
	"if [ \"$last\" = \"-version\" ]; then echo 'ffmpeg version stub'; exit 0; fi\n" +
	"printf 'RIFFstub' > \"$last\"\n"

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed with
// FFmpegStubScript.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if len(names) == 0 {
			writeStub(b.t, binDir, "ffmpeg", FFmpegStubScript)
		}
		for _, name := range names {
			writeStub(b.t, binDir, name, "#!/bin/sh\nexit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithStubScript installs a single stub executable with the given script body.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		writeStub(b.t, binDir, name, script)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

func writeStub(t testing.TB, binDir, name, script string) {
	t.Helper()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
