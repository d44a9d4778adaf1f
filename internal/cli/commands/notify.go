package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/country"
)

// NewNotifyCmd creates the command that broadcasts push notifications
func NewNotifyCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "notify <title> <message>",
		Short: "Send a push notification to every user, or to one country",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/notifications")
			if err != nil {
				return err
			}
			return runNotify(cmd.Context(), a, country.Normalize(code), args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&code, "country", "", "Only notify users of this country")

	return cmd
}

func runNotify(ctx context.Context, a *app, code, title, message string) error {
	if code == "" {
		return a.perform(ctx, "notifications.broadcast", "all", "Notification sent to all users", func(ctx context.Context) bool {
			return a.client.Broadcast(ctx, title, message)
		})
	}
	return a.perform(ctx, "notifications.broadcast", code, fmt.Sprintf("Notification sent to users in %s", code), func(ctx context.Context) bool {
		return a.client.BroadcastToCountry(ctx, code, title, message)
	})
}
