package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and moderate riders",
	}

	var f listFlags
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(f.output); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/users")
			if err != nil {
				return err
			}
			return runUsersList(cmd.Context(), a, f)
		},
	}
	addListFlags(ls, &f, true)

	ban := &cobra.Command{
		Use:   "ban <user-id>",
		Short: "Ban a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/users")
			if err != nil {
				return err
			}
			return runBan(cmd.Context(), a, args[0], true)
		},
	}

	unban := &cobra.Command{
		Use:   "unban <user-id>",
		Short: "Lift a user's ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/users")
			if err != nil {
				return err
			}
			return runBan(cmd.Context(), a, args[0], false)
		},
	}

	cmd.AddCommand(ls, ban, unban)
	return cmd
}

func runUsersList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Users(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No users found.")
			return
		}
		header(w, "ID", "NAME", "EMAIL", "COUNTRY", "ROLE", "BANNED")
		for _, u := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.Key(), orDash(u.Name()), u.Email, orDash(u.Country), orDash(u.Role), yesNo(u.IsBanned))
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}

func runBan(ctx context.Context, a *app, id string, ban bool) error {
	if ban {
		return a.perform(ctx, "users.ban", id, fmt.Sprintf("Banned user %s", id), func(ctx context.Context) bool {
			return a.client.BanUser(ctx, id)
		})
	}
	return a.perform(ctx, "users.unban", id, fmt.Sprintf("Unbanned user %s", id), func(ctx context.Context) bool {
		return a.client.UnbanUser(ctx, id)
	})
}
