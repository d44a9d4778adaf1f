package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/cli/commands"
	"github.com/wheelx-dev/wheelx/internal/logger"
)

var version = "dev" // Will be set during build

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wheelx",
	Short: "WheelX - back-office tooling for the WheelX riding community",
	Long: `WheelX CLI - Moderate riders and content, review insurance requests and
configure countries from the terminal.

List commands are filtered by country: --country, then the default saved with
'wheelx country set', then the country on your profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger.InitWithWriter(level.String(), "console", os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "Environment alias from wheelx.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log API calls to stderr")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wheelx version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectEnvCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewRidesCmd())
	rootCmd.AddCommand(commands.NewActiveRidesCmd())
	rootCmd.AddCommand(commands.NewGroupsCmd())
	rootCmd.AddCommand(commands.NewGaragesCmd())
	rootCmd.AddCommand(commands.NewPostsCmd())
	rootCmd.AddCommand(commands.NewEventsCmd())
	rootCmd.AddCommand(commands.NewRoutesCmd())
	rootCmd.AddCommand(commands.NewReportsCmd())
	rootCmd.AddCommand(commands.NewInsuranceCmd())
	rootCmd.AddCommand(commands.NewCountriesCmd())
	rootCmd.AddCommand(commands.NewCountryCmd())
	rootCmd.AddCommand(commands.NewNotifyCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
