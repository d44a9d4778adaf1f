package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <api-url>",
		Short: "Register a WheelX API environment in wheelx.json",
		Long: `Register a WheelX API environment in wheelx.json.

The first environment is named "production"; later ones env-2, env-3 and so on.
Rename them by editing wheelx.json.

Example:
  $ wheelx init https://api.wheelx.app/api/v1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(cmd.OutOrStdout(), dir, args[0])
		},
	}
}

func runInit(out io.Writer, dir, apiURL string) error {
	if err := config.ValidateAPIURL(apiURL); err != nil {
		return err
	}

	configPath := filepath.Join(dir, config.ConfigFileName)

	cfg := &config.Config{Environments: []config.Environment{}}
	isNewConfig := true
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		isNewConfig = false
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	}

	env, added := cfg.AddEnvironment(apiURL)
	if !added {
		fmt.Fprintf(out, "Environment %s is already registered as %q\n", env.APIURL, env.Alias)
		return nil
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created %s\n", config.ConfigFileName)
	}
	fmt.Fprintf(out, "✓ Added environment %q (%s)\n", env.Alias, env.APIURL)
	fmt.Fprintln(out, "\nNext: run 'wheelx login' to sign in.")
	return nil
}
