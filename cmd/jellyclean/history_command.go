package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"jellyclean/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show entries recorded by previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.JournalPath()

			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No history recorded at %s", path)
				if !cfg.Journal.Enabled {
					fmt.Fprint(out, " (set [journal] enabled = true to record runs)")
				}
				fmt.Fprintln(out)
				return nil
			}

			j, err := journal.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			var records []journal.Record
			if runID != "" {
				records, err = j.Run(cmd.Context(), runID)
			} else {
				records, err = j.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					shortRunID(r.RunID),
					r.Path,
					r.Status,
					r.Canonical,
					strconv.Itoa(r.Mutations),
					r.Error,
				})
			}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Run", "Entry", "Status", "Canonical", "Changes", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4], row[5], row[6])
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of entries to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show every entry of one run")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
