package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gotranscribe/internal/config"
	"gotranscribe/internal/daemon"
	"gotranscribe/internal/deps"
	"gotranscribe/internal/history"
	"gotranscribe/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkAPI bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency, and daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			section := func(title string) {
				if len(lines) > 0 {
					lines = append(lines, "")
				}
				lines = append(lines, renderSectionHeader(title, colorize)...)
			}

			section("Daemon")
			lines = append(lines, daemonStatusLine(cfg, colorize))

			section("Dependencies")
			for _, dep := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				switch {
				case dep.Available:
					lines = append(lines, renderStatusLine(dep.Name, statusOK, dep.Path, colorize))
				case dep.Optional:
					lines = append(lines, renderStatusLine(dep.Name, statusWarn, dep.Detail, colorize))
				default:
					lines = append(lines, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
				}
			}

			section("Checks")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				if isDependencyCheck(cfg, result) {
					continue
				}
				failKind := statusError
				if result.Name == "Work directory space" {
					failKind = statusWarn
				}
				lines = append(lines, renderCheckLine(result, failKind, colorize))
			}
			if checkAPI {
				result := preflight.CheckEndpoint(cmd.Context(), cfg.Transcription.BaseURL, cfg.Transcription.APIKey)
				lines = append(lines, renderCheckLine(result, statusError, colorize))
			} else {
				lines = append(lines, renderStatusLine("Transcription API", statusInfo, cfg.Transcription.BaseURL+" (use --check-api to probe)", colorize))
			}

			section("History")
			lines = append(lines, historyStatusLines(cmd, cfg, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkAPI, "check-api", false, "Probe the transcription endpoint with the configured key")
	return cmd
}

func isDependencyCheck(cfg *config.Config, result preflight.Result) bool {
	for _, req := range deps.Requirements(cfg) {
		if req.Name == result.Name {
			return true
		}
	}
	return false
}

func daemonStatusLine(cfg *config.Config, colorize bool) string {
	running, err := daemon.IsRunning(cfg.LockPath())
	switch {
	case err != nil:
		return renderStatusLine("API daemon", statusWarn, err.Error(), colorize)
	case running:
		return renderStatusLine("API daemon", statusOK, "Running (bind "+cfg.Paths.APIBind+")", colorize)
	default:
		return renderStatusLine("API daemon", statusInfo, "Not running (start with 'gotranscribe serve')", colorize)
	}
}

func historyStatusLines(cmd *cobra.Command, cfg *config.Config, colorize bool) []string {
	store, err := history.Open(cfg)
	if err != nil {
		return []string{renderStatusLine("Database", statusError, err.Error(), colorize)}
	}
	defer store.Close()

	counts, err := store.Counts(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("Database", statusError, err.Error(), colorize)}
	}
	lines := []string{renderStatusLine("Database", statusOK, store.Path(), colorize)}
	for _, status := range history.AllStatuses() {
		kind := statusInfo
		if status == history.StatusFailed && counts[status] > 0 {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(titleCase(string(status)), kind, fmt.Sprintf("%d", counts[status]), colorize))
	}
	return lines
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
