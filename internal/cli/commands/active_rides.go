package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/logger"
	"github.com/wheelx-dev/wheelx/internal/monitor"
)

// NewActiveRidesCmd creates the live rides command group
func NewActiveRidesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "active-rides",
		Aliases: []string{"live"},
		Short:   "Follow and stop rides in progress",
	}

	var (
		code   string
		all    bool
		output string
	)
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List rides in progress",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/active-rides")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rides := a.client.ActiveRides(ctx, a.resolveCountry(ctx, code, all))
			return render(a.out, output, rides, func(w *tabwriter.Writer) {
				activeRidesTable(w, rides)
			})
		},
	}
	addCountryFlags(ls, &code, &all)
	addOutputFlag(ls, &output)

	var (
		watchCode string
		watchAll  bool
		interval  time.Duration
	)
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the list of rides in progress until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s")
			}
			a, err := newApp(cmd, "/private/active-rides")
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scope := a.resolveCountry(ctx, watchCode, watchAll)
			return runWatch(ctx, a, scope, "@every "+interval.String())
		},
	}
	addCountryFlags(watch, &watchCode, &watchAll)
	watch.Flags().DurationVar(&interval, "interval", 15*time.Second, "Refresh interval")

	stopRide := &cobra.Command{
		Use:   "stop <ride-id>",
		Short: "Force a ride in progress to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/active-rides")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "active_rides.stop", id, fmt.Sprintf("Stopped ride %s", id), func(ctx context.Context) bool {
				return a.client.StopActiveRide(ctx, id)
			})
		},
	}

	cmd.AddCommand(ls, watch, stopRide)
	return cmd
}

// runWatch prints a fresh table on every poll until ctx is done.
func runWatch(ctx context.Context, a *app, scope, schedule string) error {
	m := monitor.New(a.client, func(rides []api.ActiveRide) {
		printSnapshot(a.out, rides, scope, time.Now())
	},
		monitor.WithSchedule(schedule),
		monitor.WithCountry(scope),
		monitor.WithLogger(logger.Logger.With().Str("component", "monitor").Logger()),
	)
	if err := m.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	m.Stop()
	return nil
}

func printSnapshot(out io.Writer, rides []api.ActiveRide, scope string, at time.Time) {
	if scope == "" {
		scope = "all countries"
	}
	fmt.Fprintf(out, "\n%s  %d active (%s)\n", at.Format("15:04:05"), len(rides), scope)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	activeRidesTable(w, rides)
	w.Flush()
}

func activeRidesTable(w io.Writer, rides []api.ActiveRide) {
	if len(rides) == 0 {
		fmt.Fprintln(w, "No rides in progress.")
		return
	}
	header(w, "ID", "CODE", "HOST", "RIDERS", "STATUS", "STARTED")
	for _, r := range rides {
		host := r.HostID
		if r.Host != nil {
			host = r.Host.Name()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Key(), r.Code, orDash(host), riders(r.Participants), r.Status, orDash(r.CreatedAt))
	}
}

// riders summarizes participants as "3 (alice, bob, +1)".
func riders(ps []api.RideParticipant) string {
	const shown = 2
	if len(ps) == 0 {
		return "0"
	}
	names := make([]string, 0, shown+1)
	for i, p := range ps {
		if i == shown {
			names = append(names, fmt.Sprintf("+%d", len(ps)-shown))
			break
		}
		names = append(names, p.Username)
	}
	return fmt.Sprintf("%d (%s)", len(ps), strings.Join(names, ", "))
}
