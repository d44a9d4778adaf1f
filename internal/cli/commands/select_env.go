package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/cli/config"
	"github.com/wheelx-dev/wheelx/internal/cli/envselect"
	"github.com/wheelx-dev/wheelx/internal/cli/userconfig"
)

// NewSelectEnvCmd creates the select-env command
func NewSelectEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-env [url-or-alias]",
		Short: "Select the environment to use for commands",
		Long: `Select the environment to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ wheelx select-env                                # Interactive selection
  $ wheelx select-env https://api.wheelx.app/api/v1  # Select by URL
  $ wheelx select-env production                     # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectEnv(cmd.OutOrStdout(), urlOrAlias)
		},
	}

	return cmd
}

func runSelectEnv(out io.Writer, urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'wheelx init' to create a configuration file", err)
	}

	var env *config.Environment
	if urlOrAlias != "" {
		env, err = cfg.GetEnvironmentByURLOrAlias(urlOrAlias)
	} else {
		env, err = envselect.PromptEnvironmentSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
		return fmt.Errorf("failed to save selected environment: %w", err)
	}

	fmt.Fprintf(out, "Selected environment: %s (%s)\n", env.Alias, env.APIURL)
	return nil
}
