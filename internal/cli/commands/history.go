package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/journal"
)

// NewHistoryCmd creates the command that shows locally recorded actions
func NewHistoryCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show moderation actions issued from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			path, err := journal.DefaultPath()
			if err != nil {
				return err
			}
			return runHistory(cmd.Context(), cmd.OutOrStdout(), path, limit, output)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	addOutputFlag(cmd, &output)

	return cmd
}

func runHistory(ctx context.Context, out io.Writer, path string, limit int, output string) error {
	if path == "" {
		return errors.New("action history is disabled")
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}

	return render(out, output, entries, func(w *tabwriter.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No actions recorded yet.")
			return
		}
		header(w, "WHEN", "ENV", "ACTION", "TARGET", "RESULT")
		for _, e := range entries {
			result := "ok"
			if !e.Success {
				result = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.RequestedAt.Local().Format("2006-01-02 15:04:05"), e.Environment, e.Action, orDash(e.Target), result)
		}
	})
}
