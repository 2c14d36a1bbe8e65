package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gotranscribe/internal/config"
	"gotranscribe/internal/fileutil"
	"gotranscribe/internal/pipeline"
	"gotranscribe/internal/transcript"
)

func newFormatCommand(ctx *commandContext) *cobra.Command {
	var (
		textArg      string
		segmentsPath string
		to           string
		vttMode      string
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Render text or a segment file as subtitles",
		Long: `Render a transcript without calling the speech-to-text endpoint.

Input is one of --text, --segments (a .json/.yaml/.yml segment list), or
plain text on stdin. Untimed text is split into ten-word cues at 0.5s per
word.`,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if textArg != "" && segmentsPath != "" {
				return errors.New("use either --text or --segments, not both")
			}
			format := strings.ToLower(strings.TrimSpace(to))
			if _, err := pipeline.ParseFormats(format); err != nil {
				return err
			}

			if !cmd.Flags().Changed("vtt-synthesis") {
				if cfg := ctx.loadConfigQuiet(); cfg != nil {
					vttMode = cfg.Formats.VTTSynthesis
				}
			}
			mode, err := transcript.ParseVTTMode(vttMode)
			if err != nil {
				return err
			}
			formatter := transcript.Formatter{VTTMode: mode}

			var (
				text   string
				result transcript.Result
			)
			switch {
			case segmentsPath != "":
				path, err := config.ExpandPath(segmentsPath)
				if err != nil {
					return err
				}
				resp, err := transcript.LoadSegmentsFile(path)
				if err != nil {
					return err
				}
				text, result = resp.Text, resp.Result()
			case cmd.Flags().Changed("text"):
				text, result = textArg, transcript.Text(textArg)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
				result = transcript.Text(text)
			}

			body, err := pipeline.Render(formatter, format, text, result)
			if err != nil {
				return err
			}
			if outputPath != "" {
				target, err := config.ExpandPath(outputPath)
				if err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(target, []byte(body), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", target)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringVar(&textArg, "text", "", "Transcript text without timing")
	cmd.Flags().StringVar(&segmentsPath, "segments", "", "Segment file (.json, .yaml, .yml)")
	cmd.Flags().StringVar(&to, "to", pipeline.FormatSRT, "Output format: srt, vtt, txt, json")
	cmd.Flags().StringVar(&vttMode, "vtt-synthesis", "single", "VTT cues for untimed text: single or chunked")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
