package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"gotranscribe/internal/api"
	"gotranscribe/internal/config"
	"gotranscribe/internal/deps"
	"gotranscribe/internal/pipeline"
	"gotranscribe/internal/preflight"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

type transcribeResult struct {
	Transcription api.Transcription `json:"transcription"`
	Files         map[string]string `json:"files,omitempty"`
	Copied        bool              `json:"copied"`
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir     string
		formatsArg string
		language   string
		model      string
		copyText   bool
		noFiles    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio or video file",
		Long: `Extract the audio track with ffmpeg, send it to the configured
speech-to-text endpoint, and write the transcript as txt/srt/vtt (and
optionally json) next to each other in the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Model: strings.TrimSpace(model), NoOutput: noFiles}
			if language != "" {
				if opts.Language, err = config.NormalizeLanguage(language); err != nil {
					return err
				}
			}
			if formatsArg != "" {
				if opts.Formats, err = pipeline.ParseFormats(formatsArg); err != nil {
					return err
				}
			}
			if outDir != "" {
				if opts.OutputDir, err = config.ExpandPath(outDir); err != nil {
					return err
				}
			}

			if missing := deps.MissingRequired(preflight.CheckSystemDeps(cmd.Context(), cfg)); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}

			logger, err := ctx.fileLogger(cfg)
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			pipe, err := pipeline.New(cfg, store, logger)
			if err != nil {
				return err
			}
			out, runErr := pipe.Run(cmd.Context(), source, opts)
			if runErr != nil {
				if out != nil && out.Job != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Job %s %s\n", out.Job.ShortID(), out.Job.Status)
				}
				return runErr
			}

			copied := false
			if copyText {
				text, _ := pipeline.Render(pipe.Formatter(), pipeline.FormatTXT, out.Response.Text, out.Result())
				if err := clipboardWrite(text); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: copy to clipboard failed: %v\n", err)
				} else {
					copied = true
				}
			}

			if jsonOutput {
				return writeJSON(cmd, transcribeResult{
					Transcription: api.FromJob(out.Job, false),
					Files:         out.Files,
					Copied:        copied,
				})
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Transcribed %s (job %s)\n", out.Job.Source, out.Job.ShortID())
			if len(out.Files) > 0 {
				printFiles(stdout, out.Files)
			} else {
				text, _ := pipeline.Render(pipe.Formatter(), pipeline.FormatTXT, out.Response.Text, out.Result())
				fmt.Fprintln(stdout, text)
			}
			if copied {
				fmt.Fprintln(stdout, "Copied transcript text to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().StringVarP(&formatsArg, "formats", "f", "", "Comma-separated output formats: txt,srt,vtt,json")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language hint (BCP-47, e.g. en or pt-BR)")
	cmd.Flags().StringVar(&model, "model", "", "Override transcription.model")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the transcript text to the clipboard")
	cmd.Flags().BoolVar(&noFiles, "no-files", false, "Print the transcript instead of writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
