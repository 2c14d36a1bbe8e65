package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gotranscribe/internal/api"
	"gotranscribe/internal/history"
	"gotranscribe/internal/pipeline"
	"gotranscribe/internal/transcript"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"transcriptions"},
		Short:   "Inspect recorded transcriptions",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, api.TranscriptionListResponse{Items: api.FromJobs(jobs)})
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No transcriptions recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(historyColumns, historyRows(jobs)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

var historyColumns = []tableColumn{
	{Header: "ID"},
	{Header: "Status"},
	{Header: "Source", MaxWidth: 40},
	{Header: "Length", Align: alignRight},
	{Header: "Created"},
}

func historyRows(jobs []*history.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ShortID(),
			string(job.Status),
			job.Source,
			formatMediaDuration(job.Duration),
			job.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func formatMediaDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	minutes := int(d / time.Minute)
	secs := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a transcription (optionally rendered as txt/srt/vtt/json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := resolveJob(cmd, store, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, api.TranscriptionResponse{Item: api.FromJob(job, false)})
			}

			out := cmd.OutOrStdout()
			if format != "" {
				if job.Status != history.StatusCompleted {
					return fmt.Errorf("transcription %s is %s", job.ShortID(), job.Status)
				}
				mode, err := transcript.ParseVTTMode(cfg.Formats.VTTSynthesis)
				if err != nil {
					return err
				}
				body, err := pipeline.Render(transcript.Formatter{VTTMode: mode}, format, job.Text, job.Result())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, body)
				return nil
			}

			fmt.Fprintf(out, "ID:        %s\n", job.ID)
			fmt.Fprintf(out, "Source:    %s\n", job.Source)
			fmt.Fprintf(out, "Status:    %s\n", job.Status)
			if job.Model != "" {
				fmt.Fprintf(out, "Model:     %s\n", job.Model)
			}
			if job.Language != "" {
				fmt.Fprintf(out, "Language:  %s\n", job.Language)
			}
			fmt.Fprintf(out, "Length:    %s\n", formatMediaDuration(job.Duration))
			fmt.Fprintf(out, "Segments:  %d\n", len(job.Segments))
			fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Local().Format(time.RFC3339))
			if job.OutputDir != "" {
				fmt.Fprintf(out, "Output:    %s\n", job.OutputDir)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
			}
			if text := strings.TrimSpace(job.Text); text != "" {
				fmt.Fprintf(out, "\n%s\n", text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Render as txt, srt, vtt, or json")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the record as JSON")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a transcription from history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := resolveJob(cmd, store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.Remove(cmd.Context(), job.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", job.ShortID(), job.Source)
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every transcription from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transcriptions\n", removed)
			return nil
		},
	}
}

func resolveJob(cmd *cobra.Command, store *history.Store, id string) (*history.Job, error) {
	job, err := store.Resolve(cmd.Context(), strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, history.ErrAmbiguousID) {
			return nil, fmt.Errorf("%q matches more than one transcription; use more characters", id)
		}
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("transcription %q not found", id)
	}
	return job, nil
}
