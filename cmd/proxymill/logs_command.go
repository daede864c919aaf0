package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"proxymill/internal/logging"
	"proxymill/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var batch string
	var pass string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the proxymill log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)

			var filter logs.Filter
			if batch != "" {
				filter.Contains = append(filter.Contains, logging.FieldBatch+"="+batch)
			}
			if pass != "" {
				filter.Contains = append(filter.Contains, logging.FieldPass+"="+pass)
			}

			recent, offset, err := logs.Tail(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			err = logs.Follow(signalCtx, path, offset, logs.DefaultPollInterval, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
			if signalCtx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&batch, "batch", "", "Only show lines for this batch (e.g. standard_3)")
	cmd.Flags().StringVar(&pass, "pass", "", "Only show lines for this pass")
	return cmd
}
