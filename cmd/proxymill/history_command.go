package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"proxymill/internal/config"
	"proxymill/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(ctx, func(store *ledger.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						formatDuration(run),
						strings.Join(run.Passes, ","),
						string(run.Status),
						run.Message,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Run", "Started", "Duration", "Passes", "Status", "Message"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var status string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show pass and card outcomes for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := strings.TrimSpace(args[0])
			return withLedger(ctx, func(store *ledger.Store) error {
				passes, err := store.PassResults(cmd.Context(), runID)
				if err != nil {
					return err
				}
				cards, err := store.CardResults(cmd.Context(), runID, ledger.CardStatus(strings.ToLower(strings.TrimSpace(status))))
				if err != nil {
					return err
				}
				if len(passes) == 0 && len(cards) == 0 {
					return fmt.Errorf("run %s not found in ledger", runID)
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"run_id": runID, "passes": passes, "cards": cards})
				}

				out := cmd.OutOrStdout()
				passRows := make([][]string, 0, len(passes))
				for _, p := range passes {
					passRows = append(passRows, []string{
						p.Pass,
						p.State,
						strconv.Itoa(p.Cards),
						strconv.Itoa(p.Batches),
						strconv.Itoa(p.RetryRounds),
						strconv.Itoa(p.Failures),
						strconv.Itoa(p.Copied),
						strconv.Itoa(p.Unrendered),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Pass", "State", "Cards", "Batches", "Retries", "Failures", "Copied", "Unrendered"},
					passRows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))

				if len(cards) == 0 {
					return nil
				}
				cardRows := make([][]string, 0, len(cards))
				for _, c := range cards {
					cardRows = append(cardRows, []string{c.DisplayName, c.Face, string(c.Status)})
				}
				fmt.Fprintln(out, renderTable([]string{"Card", "Face", "Status"}, cardRows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show cards with this status (rendered, missing, rejected, failed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func withLedger(ctx *commandContext, fn func(*ledger.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := requireLedger(cfg); err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func requireLedger(cfg *config.Config) error {
	if !cfg.Ledger.Enabled {
		return errors.New("run ledger is disabled (set ledger.enabled = true)")
	}
	return nil
}

func formatDuration(run ledger.Run) string {
	if run.FinishedAt == nil {
		return "running"
	}
	return run.Duration().Round(time.Second).String()
}
