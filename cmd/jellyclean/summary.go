package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"jellyclean/internal/reconcile"
)

var summaryStatuses = []reconcile.Status{
	reconcile.StatusCleaned,
	reconcile.StatusPlanned,
	reconcile.StatusUnchanged,
	reconcile.StatusSkipped,
	reconcile.StatusFailed,
	reconcile.StatusIgnored,
}

// renderSummary prints one row per entry followed by the status totals. A
// terminal gets a table; anything else gets tab-separated lines.
func renderSummary(out io.Writer, summary reconcile.Summary, table bool) {
	if len(summary.Outcomes) == 0 && len(summary.NotProcessed) == 0 {
		fmt.Fprintf(out, "Nothing to clean in %s\n", summary.Root)
		return
	}

	if table {
		rows := make([][]string, 0, len(summary.Outcomes))
		for _, o := range summary.Outcomes {
			rows = append(rows, []string{
				filepath.Base(o.Path),
				string(o.Status),
				targetName(o),
				strconv.Itoa(o.Subtitles),
				strconv.Itoa(o.Mutations),
				o.ErrorMessage(),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Entry", "Status", "Target", "Subs", "Changes", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
	} else {
		for _, o := range summary.Outcomes {
			line := fmt.Sprintf("%s\t%s", o.Status, o.Path)
			if target := targetName(o); target != "" {
				line += "\t-> " + target
			}
			if msg := o.ErrorMessage(); msg != "" {
				line += "\t" + msg
			}
			fmt.Fprintln(out, line)
		}
	}

	for _, path := range summary.NotProcessed {
		fmt.Fprintf(out, "not processed\t%s\n", path)
	}

	fmt.Fprintln(out, totalsLine(summary))
}

func targetName(o reconcile.Outcome) string {
	if o.Target == "" || o.Target == o.Path {
		return ""
	}
	return filepath.Base(o.Target)
}

func totalsLine(summary reconcile.Summary) string {
	line := ""
	if summary.DryRun {
		line = "dry run: "
	}
	for i, status := range summaryStatuses {
		if i > 0 {
			line += ", "
		}
		line += fmt.Sprintf("%s %d", status, summary.Count(status))
	}
	if n := len(summary.NotProcessed); n > 0 {
		line += fmt.Sprintf(", not processed %d", n)
	}
	changes := "changes"
	if summary.DryRun {
		changes = "planned changes"
	}
	return fmt.Sprintf("%s (%s: %d)", line, changes, summary.Mutations())
}
