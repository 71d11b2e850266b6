package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jellyclean/internal/naming"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "normalize <name>...",
		Short:       "Print the canonical form of raw names without touching the filesystem",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(args))
			failures := 0
			for _, raw := range args {
				canonical, err := naming.Normalize(raw)
				var formatErr *naming.FormatError
				switch {
				case errors.As(err, &formatErr):
					failures++
					rows = append(rows, []string{raw, "no", "", formatErr.Error()})
				case err != nil:
					return err
				default:
					rows = append(rows, []string{raw, yesNo(naming.Validate(raw)), canonical, ""})
				}
			}

			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Canonical", "Normalized", "Error"},
					rows,
					nil,
				))
			} else {
				for _, row := range rows {
					if row[3] != "" {
						fmt.Fprintf(out, "%s\t!\t%s\n", row[0], row[3])
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", row[0], row[2])
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d names could not be normalized", failures, len(args))
			}
			return nil
		},
	}
}
