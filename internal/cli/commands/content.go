package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/api"
)

// listCmd builds an "ls" subcommand for one back-office screen.
func listCmd(short, page string, withSearch bool, run func(context.Context, *app, listFlags) error) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(f.output); err != nil {
				return err
			}
			a, err := newApp(cmd, page)
			if err != nil {
				return err
			}
			return run(cmd.Context(), a, f)
		},
	}
	addListFlags(cmd, &f, withSearch)
	return cmd
}

// deleteCmd builds a "delete <id>" subcommand.
func deleteCmd(noun, page, action string, del func(*api.Client, context.Context, string) bool) *cobra.Command {
	return &cobra.Command{
		Use:     fmt.Sprintf("delete <%s-id>", noun),
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", noun),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, page)
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), action, id, fmt.Sprintf("Deleted %s %s", noun, id), func(ctx context.Context) bool {
				return del(a.client, ctx, id)
			})
		},
	}
}

// NewRidesCmd creates the rides command group
func NewRidesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rides", Short: "Browse completed rides"}
	cmd.AddCommand(listCmd("List rides", "/private/rides", true, runRidesList))
	return cmd
}

func runRidesList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Rides(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No rides found.")
			return
		}
		header(w, "ID", "NAME", "RIDER", "DISTANCE", "MAX SPEED", "COMPLETED")
		for _, r := range page.Data {
			rider := r.UserID
			if r.User != nil {
				rider = r.User.Name()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f km\t%.0f km/h\t%s\n",
				r.Key(), orDash(r.Name), orDash(rider), r.Distance, r.MaxSpeed, orDash(r.CompletedAt))
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

// NewGroupsCmd creates the groups command group
func NewGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "groups", Short: "Browse rider groups"}
	cmd.AddCommand(listCmd("List groups", "/private/groups", true, runGroupsList))
	return cmd
}

func runGroupsList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Groups(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No groups found.")
			return
		}
		header(w, "ID", "NAME", "MEMBERS", "PUBLIC", "COUNTRY")
		for _, g := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", g.Key(), g.Name, g.MembersCount, yesNo(g.IsPublic), orDash(g.Country))
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

// NewPostsCmd creates the posts command group
func NewPostsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "posts", Short: "Moderate community posts"}
	cmd.AddCommand(
		listCmd("List posts", "/private/posts", true, runPostsList),
		deleteCmd("post", "/private/posts", "posts.delete", (*api.Client).DeletePost),
	)
	return cmd
}

func runPostsList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Posts(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No posts found.")
			return
		}
		header(w, "ID", "AUTHOR", "CONTENT", "LIKES", "COMMENTS", "CREATED AT")
		for _, p := range page.Data {
			author := "-"
			if p.Author != nil {
				author = p.Author.Name()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				p.Key(), author, truncate(p.Content, 40), p.LikesCount, p.CommentsCount, orDash(p.CreatedAt))
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

// NewEventsCmd creates the events command group
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "events", Short: "Moderate ride events"}
	cmd.AddCommand(
		listCmd("List events", "/private/events", true, runEventsList),
		deleteCmd("event", "/private/events", "events.delete", (*api.Client).DeleteEvent),
	)
	return cmd
}

func runEventsList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Events(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No events found.")
			return
		}
		header(w, "ID", "TITLE", "STARTS", "LOCATION", "PARTICIPANTS")
		for _, e := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.Key(), e.Title, orDash(e.StartDate), orDash(e.Location), e.ParticipantsCount)
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

// NewReportsCmd creates the reports command group
func NewReportsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Review moderation reports"}
	cmd.AddCommand(listCmd("List reports", "/private/reports", false, runReportsList))
	return cmd
}

func runReportsList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Reports(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No reports found.")
			return
		}
		header(w, "ID", "TYPE", "TARGET", "REASON", "STATUS")
		for _, r := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Key(), r.Type, r.TargetID, truncate(r.Reason, 40), r.Status)
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

// NewRoutesCmd creates the routes command group
func NewRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "routes", Short: "Moderate shared routes"}
	cmd.AddCommand(
		listCmd("List routes", "/private/routes", true, runRoutesList),
		deleteCmd("route", "/private/routes", "routes.delete", (*api.Client).DeleteRoute),
	)
	return cmd
}

func runRoutesList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Routes(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No routes found.")
			return
		}
		header(w, "ID", "NAME", "TYPE", "DISTANCE", "DIFFICULTY", "RATING", "VIEWS")
		for _, r := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f km\t%s\t%.1f\t%d\n",
				r.Key(), r.Name, orDash(r.Type), r.Distance, orDash(r.Difficulty), r.Rating, r.ViewCount)
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
