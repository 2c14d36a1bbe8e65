package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gotranscribe/internal/daemon"
	"gotranscribe/internal/history"
	"gotranscribe/internal/logging"
	"gotranscribe/internal/pipeline"
	"gotranscribe/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(bind) != "" {
				cfg.Paths.APIBind = strings.TrimSpace(bind)
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if removed := logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTargets(cfg)...); removed > 0 {
				logger.Info("pruned old logs and scratch directories", logging.Int("count", removed))
			}
			for _, result := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failure",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldErrorHint, "run 'gotranscribe status' for details"),
				)
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			pipe, err := pipeline.New(cfg, store, logger)
			if err != nil {
				store.Close()
				return err
			}
			d, err := daemon.New(cfg, store, pipe, logger)
			if err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", d.Address())

			<-cmd.Context().Done()
			logger.Info("gotranscribe daemon shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind (host:port)")
	return cmd
}
