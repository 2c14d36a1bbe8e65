package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gotranscribe/internal/logging"
	"gotranscribe/internal/logs"
)

const followWait = time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		follow bool
		lines  int
		jobID  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the gotranscribe log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			match := ""
			if jobID != "" {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				job, err := resolveJob(cmd, store, jobID)
				store.Close()
				if err != nil {
					return err
				}
				match = job.ShortID()
			}

			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			opts := logs.TailOptions{Offset: -1, Limit: lines, Match: match}
			if lines <= 0 {
				opts.Offset = 0
			}

			out := cmd.OutOrStdout()
			printed := false
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
					printed = true
				}
				if !follow {
					if !printed {
						fmt.Fprintln(out, "No log entries available")
					}
					return nil
				}
				opts = logs.TailOptions{Offset: result.Offset, Follow: true, Wait: followWait, Match: match}
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&jobID, "job", "", "Only show entries for this transcription id or prefix")
	return cmd
}
