package envselect

import (
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"github.com/wheelx-dev/wheelx/internal/cli/config"
	"github.com/wheelx-dev/wheelx/internal/cli/userconfig"
	"github.com/wheelx-dev/wheelx/internal/country"
)

// Prompter picks one of n labelled items. It is swapped in tests.
type Prompter func(label string, items []string) (int, error)

// Prompt is the interactive Prompter.
var Prompt Prompter = promptSelect

// ResolveEnvironment determines which environment to use based on the following priority:
// 1. If alias is provided, use that environment
// 2. If user has a selected environment in their local config, use that
// 3. If only one environment in project config, use that
// 4. Otherwise, prompt user to select an environment interactively
//
// A nil project config means no wheelx.json exists and the fallback is used.
func ResolveEnvironment(projectConfig *config.Config, alias string, warn io.Writer) (*config.Environment, error) {
	if projectConfig == nil || len(projectConfig.Environments) == 0 {
		if alias != "" {
			return nil, fmt.Errorf("environment '%s' not found: no %s in this directory tree", alias, config.ConfigFileName)
		}
		env := config.FallbackEnvironment()
		return &env, nil
	}

	// Priority 1: Use alias if provided
	if alias != "" {
		return projectConfig.GetEnvironmentByAlias(alias)
	}

	// Priority 2: Use selected environment from user config
	selected, err := userconfig.GetSelectedEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selected != "" {
		env, err := projectConfig.GetEnvironmentByAlias(selected)
		if err == nil {
			return env, nil
		}
		// Selected environment no longer exists in project config, clear it and continue
		_ = userconfig.SetSelectedEnvironment("")
	}

	// Priority 3: If only one environment, use it automatically
	if len(projectConfig.Environments) == 1 {
		env := &projectConfig.Environments[0]
		if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
			fmt.Fprintf(warn, "Warning: failed to save selected environment: %v\n", err)
		}
		return env, nil
	}

	// Priority 4: Prompt user to select an environment
	env, err := PromptEnvironmentSelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SetSelectedEnvironment(env.Alias); err != nil {
		fmt.Fprintf(warn, "Warning: failed to save selected environment: %v\n", err)
	}

	return env, nil
}

// PromptEnvironmentSelection shows an interactive prompt for the user to select an environment
func PromptEnvironmentSelection(projectConfig *config.Config) (*config.Environment, error) {
	if len(projectConfig.Environments) == 0 {
		return nil, fmt.Errorf("no environments configured in %s", config.ConfigFileName)
	}

	labels := make([]string, len(projectConfig.Environments))
	for i, env := range projectConfig.Environments {
		labels[i] = fmt.Sprintf("%s (%s)", env.Alias, env.APIURL)
	}

	index, err := Prompt("Select an environment", labels)
	if err != nil {
		return nil, fmt.Errorf("environment selection cancelled: %w", err)
	}

	return &projectConfig.Environments[index], nil
}

// PromptCountry asks for a country from the known table. The first item
// clears the filter.
func PromptCountry() (string, error) {
	options := country.Options()
	labels := make([]string, 0, len(options)+1)
	labels = append(labels, "All countries")
	for _, opt := range options {
		labels = append(labels, fmt.Sprintf("%s (%s)", opt.Name, opt.Code))
	}

	index, err := Prompt("Select a country", labels)
	if err != nil {
		return "", fmt.Errorf("country selection cancelled: %w", err)
	}
	if index == 0 {
		return "", nil
	}
	return options[index-1].Code, nil
}

func promptSelect(label string, items []string) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	return index, err
}
