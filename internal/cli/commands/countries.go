package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/cli/envselect"
	"github.com/wheelx-dev/wheelx/internal/cli/userconfig"
	"github.com/wheelx-dev/wheelx/internal/country"
)

// NewCountriesCmd creates the countries command group
func NewCountriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Inspect and configure per-country features",
	}

	var output string
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List country configurations and their features",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/countries")
			if err != nil {
				return err
			}
			return runCountriesList(cmd.Context(), a, output)
		},
	}
	addOutputFlag(ls, &output)

	var codesOutput string
	codes := &cobra.Command{
		Use:   "codes",
		Short: "List the countries the API knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(codesOutput); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/countries")
			if err != nil {
				return err
			}
			return runCountryCodes(cmd.Context(), a, codesOutput)
		},
	}
	addOutputFlag(codes, &codesOutput)

	var off bool
	toggle := &cobra.Command{
		Use:   "toggle <code> <feature>",
		Short: "Enable or disable one feature for a country",
		Long:  "Enable or disable one feature for a country.\n\nFeatures: " + featureKeys(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, feature := country.Normalize(args[0]), args[1]
			if !api.IsFeature(feature) {
				return fmt.Errorf("unknown feature %q (use one of: %s)", feature, featureKeys())
			}
			a, err := newApp(cmd, "/private/countries")
			if err != nil {
				return err
			}
			return runToggleFeature(cmd.Context(), a, code, feature, !off)
		},
	}
	toggle.Flags().BoolVar(&off, "off", false, "Disable the feature instead of enabling it")

	cmd.AddCommand(ls, codes, toggle)
	return cmd
}

func featureKeys() string {
	keys := make([]string, len(api.Features))
	for i, f := range api.Features {
		keys[i] = f.Key
	}
	return strings.Join(keys, ", ")
}

func runCountriesList(ctx context.Context, a *app, output string) error {
	configs := a.client.CountryConfigs(ctx)

	return render(a.out, output, configs, func(w *tabwriter.Writer) {
		if len(configs) == 0 {
			fmt.Fprintln(w, "No country configurations found.")
			return
		}
		header(w, "CODE", "NAME", "ACTIVE", "ENABLED FEATURES")
		for _, c := range configs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Code, c.Name, yesNo(c.IsActive), orDash(enabledFeatures(c.Features)))
		}
	})
}

// enabledFeatures lists enabled feature labels in the order of api.Features,
// followed by any keys the API returned that are not known here.
func enabledFeatures(features map[string]bool) string {
	var labels []string
	for _, f := range api.Features {
		if features[f.Key] {
			labels = append(labels, f.Label)
		}
	}
	var extra []string
	for key, on := range features {
		if on && !api.IsFeature(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return strings.Join(append(labels, extra...), ", ")
}

func runCountryCodes(ctx context.Context, a *app, output string) error {
	countries := a.client.Countries(ctx)

	return render(a.out, output, countries, func(w *tabwriter.Writer) {
		if len(countries) == 0 {
			fmt.Fprintln(w, "No countries found.")
			return
		}
		header(w, "CODE", "NAME", "FLAG")
		for _, c := range countries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Code, c.Name, orDash(c.Flag))
		}
	})
}

func runToggleFeature(ctx context.Context, a *app, code, feature string, on bool) error {
	state := "disabled"
	if on {
		state = "enabled"
	}
	target := code + "/" + feature
	return a.perform(ctx, "countries.features", target, fmt.Sprintf("%s %s for %s", feature, state, code), func(ctx context.Context) bool {
		return a.client.UpdateCountryFeatures(ctx, code, map[string]bool{feature: on})
	})
}

// NewCountryCmd creates the command that manages the default country filter
func NewCountryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "country",
		Short: "Show or change the default country filter",
		Long: `Show or change the default country filter.

List commands filter by, in order: --country, the saved default, your profile country.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the country list commands will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/dashboard")
			if err != nil {
				return err
			}
			return runCountryShow(cmd.Context(), a)
		},
	}

	set := &cobra.Command{
		Use:   "set [code-or-name]",
		Short: "Save the default country; pass \"\" or \"all\" to clear it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 0 {
				var err error
				if code, err = envselect.PromptCountry(); err != nil {
					return err
				}
			} else if !strings.EqualFold(args[0], "all") {
				code = country.Normalize(args[0])
			}
			return runCountrySet(cmd, code)
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func runCountryShow(ctx context.Context, a *app) error {
	if a.user.DefaultCountry != "" {
		fmt.Fprintf(a.out, "%s (saved default)\n", a.user.DefaultCountry)
		return nil
	}
	if code := a.resolveCountry(ctx, "", false); code != "" {
		fmt.Fprintf(a.out, "%s (profile)\n", code)
		return nil
	}
	fmt.Fprintln(a.out, "All countries")
	return nil
}

func runCountrySet(cmd *cobra.Command, code string) error {
	if code != "" && !country.Known(code) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not in the known country list\n", code)
	}
	if err := userconfig.SetDefaultCountry(code); err != nil {
		return fmt.Errorf("failed to save default country: %w", err)
	}
	if code == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Country filter cleared (all countries)")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Default country set to %s\n", code)
	return nil
}
