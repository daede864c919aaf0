package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"proxymill/internal/catalog"
	"proxymill/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var passes []string
	var subset []string
	var fromRerun bool
	var updatesOnly bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render proxies for every legal card in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if fromRerun {
				list, err := pipeline.ReadRerunList(cfg.RerunPath())
				switch {
				case errors.Is(err, fs.ErrNotExist):
					fmt.Fprintln(cmd.OutOrStdout(), "No rerun list found; nothing to do")
					return nil
				case err != nil:
					return fmt.Errorf("read rerun list: %w", err)
				}
				subset = append(subset, list.CardSubset...)
			}
			if len(subset) > 0 {
				cfg.Cards.Subset = subset
			}
			if cmd.Flags().Changed("updates-only") {
				cfg.Cards.UpdatesOnly = updatesOnly
			}

			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, runErr := pipeline.Run(signalCtx, cfg, logger, pipeline.Options{Passes: passes})
			printRunSummary(cmd.OutOrStdout(), summary)
			return runErr
		},
	}

	cmd.Flags().StringSliceVarP(&passes, "pass", "p", nil, "Render only these passes (repeatable)")
	cmd.Flags().StringSliceVarP(&subset, "subset", "s", nil, "Render only these card names (repeatable)")
	cmd.Flags().BoolVar(&fromRerun, "rerun", false, "Render the cards left over by the previous run")
	cmd.Flags().BoolVar(&updatesOnly, "updates-only", false, "Skip cards that already have a proxy in output_dir")
	return cmd
}

func printRunSummary(out io.Writer, summary pipeline.Summary) {
	if summary.RunID == "" {
		return
	}
	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	fmt.Fprintf(out, "Catalog: %d entries, %d legal%s\n", summary.Filter.Total, summary.Filter.Allowed, formatDropped(summary.Filter.Dropped))
	fmt.Fprintf(out, "Records: %d (duplicates %d, watermark merges %d, backfilled %d)\n",
		summary.Derive.Records, summary.Derive.Duplicates, summary.Derive.WatermarkMerges, summary.Derive.Backfilled)
	if summary.Derive.SkippedExisting > 0 {
		fmt.Fprintf(out, "Skipped %d card(s) that already have a proxy\n", summary.Derive.SkippedExisting)
	}
	if len(summary.Derive.UnmatchedSubset) > 0 {
		fmt.Fprintf(out, "Subset names not found: %s\n", strings.Join(summary.Derive.UnmatchedSubset, ", "))
	}

	if len(summary.Passes) > 0 {
		headers := []string{"Pass", "State", "Cards", "Batches", "Retries", "Failures", "Copied", "Unchanged", "Discarded", "Missing"}
		rows := make([][]string, 0, len(summary.Passes))
		for _, p := range summary.Passes {
			rows = append(rows, []string{
				p.Pass,
				string(p.Outcome.State),
				strconv.Itoa(p.Cards),
				strconv.Itoa(len(p.Outcome.Batches)),
				strconv.Itoa(p.Outcome.RetryRounds),
				strconv.Itoa(p.Outcome.Failures),
				strconv.Itoa(p.Reconcile.Copied),
				strconv.Itoa(p.Reconcile.Unchanged),
				strconv.Itoa(p.Reconcile.Discarded),
				strconv.Itoa(len(p.Reconcile.Missing)),
			})
		}
		aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
		fmt.Fprintln(out, renderTable(headers, rows, aligns))
	}

	if len(summary.Unrendered) > 0 {
		fmt.Fprintf(out, "%d card(s) without a proxy; rerun with `proxymill run --rerun` (list at %s)\n",
			len(summary.Unrendered), summary.RerunPath)
		for _, name := range summary.Unrendered {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	}
}

func formatDropped(dropped map[catalog.Reason]int) string {
	if len(dropped) == 0 {
		return ""
	}
	parts := make([]string, 0, len(dropped))
	for reason, count := range dropped {
		parts = append(parts, fmt.Sprintf("%s %d", reason, count))
	}
	sort.Strings(parts)
	return " (dropped: " + strings.Join(parts, ", ") + ")"
}
