package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the dashboard statistics command
func NewStatsCmd() *cobra.Command {
	var (
		code   string
		all    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/dashboard")
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), a, code, all, output)
		},
	}
	addCountryFlags(cmd, &code, &all)
	addOutputFlag(cmd, &output)

	return cmd
}

func runStats(ctx context.Context, a *app, code string, all bool, output string) error {
	scope := a.resolveCountry(ctx, code, all)
	stats := a.client.DashboardStats(ctx, scope)
	if stats == nil {
		return errors.New("statistics are unavailable (see logs with --verbose)")
	}

	if scope == "" {
		scope = "all countries"
	}
	return render(a.out, output, stats, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Dashboard (%s)\n\n", scope)
		fmt.Fprintf(w, "Users\ttotal %d\tactive %d\tbanned %d\tnew this month %d\n",
			stats.Users.Total, stats.Users.Active, stats.Users.Banned, stats.Users.NewThisMonth)
		fmt.Fprintf(w, "Rides\ttotal %d\t%.1f km\tavg %.1f km\tthis month %d\n",
			stats.Rides.Total, stats.Rides.TotalDistance, stats.Rides.AverageDistance, stats.Rides.ThisMonth)
		fmt.Fprintf(w, "Groups\ttotal %d\tpublic %d\tprivate %d\t\n",
			stats.Groups.Total, stats.Groups.Public, stats.Groups.Private)
		fmt.Fprintf(w, "Reports\tpending %d\tresolved %d\tthis month %d\t\n",
			stats.Reports.Pending, stats.Reports.Resolved, stats.Reports.ThisMonth)
	})
}
