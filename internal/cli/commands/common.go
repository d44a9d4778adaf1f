package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/cli/config"
	"github.com/wheelx-dev/wheelx/internal/cli/envselect"
	"github.com/wheelx-dev/wheelx/internal/cli/userconfig"
	"github.com/wheelx-dev/wheelx/internal/country"
	"github.com/wheelx-dev/wheelx/internal/journal"
	"github.com/wheelx-dev/wheelx/internal/locale"
	"github.com/wheelx-dev/wheelx/internal/logger"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// app is what a command needs to talk to one environment.
type app struct {
	env    config.Environment
	client *api.Client
	store  session.Store
	user   *userconfig.UserConfig
	out    io.Writer
	errOut io.Writer

	// journalPath is where mutations are recorded; empty disables recording
	journalPath string
}

// newApp resolves the environment and builds a client whose 401 handling
// points the user back to the back-office screen named by page.
func newApp(cmd *cobra.Command, page string) (*app, error) {
	projectCfg, err := loadProjectConfig()
	if err != nil {
		return nil, err
	}

	alias, _ := cmd.Flags().GetString("env")
	env, err := envselect.ResolveEnvironment(projectCfg, alias, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	user, err := userconfig.Load()
	if err != nil {
		return nil, err
	}

	journalPath, err := journal.DefaultPath()
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Action history disabled")
	}

	store := session.NewKeyringStore(env.APIURL)
	nav := &cliNavigator{
		out:      cmd.ErrOrStderr(),
		location: &url.URL{Path: locale.Localize(locale.Default, page)},
	}
	client := api.New(env.APIURL, store,
		api.WithNavigator(nav),
		api.WithLogger(logger.Logger.With().Str("env", env.Alias).Logger()),
	)

	return &app{
		env:         *env,
		client:      client,
		store:       store,
		user:        user,
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		journalPath: journalPath,
	}, nil
}

// loadProjectConfig returns nil when no wheelx.json exists.
func loadProjectConfig() (*config.Config, error) {
	path, err := config.FindConfigFile()
	if err != nil {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nFix or remove %s", err, path)
	}
	return cfg, nil
}

// cliNavigator tells the operator where to sign in again after a 401.
type cliNavigator struct {
	out      io.Writer
	location *url.URL
}

func (n *cliNavigator) Location() *url.URL { return n.location }

func (n *cliNavigator) Navigate(target string) {
	fmt.Fprintf(n.out, "Session expired. Run 'wheelx login' to sign in again (web: %s)\n", target)
}

// record notes a mutation in the local history. Failures only warn.
func (a *app) record(ctx context.Context, action, target string, ok bool) {
	if a.journalPath == "" {
		return
	}

	j, err := journal.Open(a.journalPath)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to open action history")
		return
	}
	defer j.Close()

	if _, err := j.Record(ctx, action, target, a.env.Alias, ok); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to record action")
	}
}

// perform runs one mutation, records it and turns a false result into an error.
func (a *app) perform(ctx context.Context, action, target, done string, fn func(context.Context) bool) error {
	ok := fn(ctx)
	a.record(ctx, action, target, ok)
	if !ok {
		return fmt.Errorf("%s %s failed (see logs with --verbose)", action, target)
	}
	fmt.Fprintf(a.out, "✓ %s\n", done)
	return nil
}

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var errUnknownOutput = errors.New("unknown output format (use table, json or yaml)")

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("%w: %q", errUnknownOutput, format)
}

// render writes v as JSON or YAML, or calls table with a tab writer.
func render(out io.Writer, format string, v any, table func(w *tabwriter.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case outputTable, "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
	return fmt.Errorf("%w: %q", errUnknownOutput, format)
}

// header prints column names and their underline.
func header(w io.Writer, cols ...string) {
	under := make([]string, len(cols))
	for i, c := range cols {
		under[i] = strings.Repeat("─", len([]rune(c)))
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	fmt.Fprintln(w, strings.Join(under, "\t"))
}

// listFlags are shared by every paginated list command.
type listFlags struct {
	page         int
	limit        int
	search       string
	country      string
	allCountries bool
	output       string
}

func addListFlags(cmd *cobra.Command, f *listFlags, withSearch bool) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.limit, "limit", api.DefaultLimit, "Items per page")
	if withSearch {
		cmd.Flags().StringVar(&f.search, "search", "", "Search term")
	}
	addCountryFlags(cmd, &f.country, &f.allCountries)
	addOutputFlag(cmd, &f.output)
}

func addCountryFlags(cmd *cobra.Command, code *string, all *bool) {
	cmd.Flags().StringVar(code, "country", "", "Country code or name (defaults to your saved or profile country)")
	cmd.Flags().BoolVar(all, "all-countries", false, "Ignore saved and profile countries")
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputTable, "Output format: table, json or yaml")
}

// resolveCountry applies the filter priority: flag, saved default, profile.
func (a *app) resolveCountry(ctx context.Context, flag string, all bool) string {
	if all {
		return ""
	}
	filter := country.NewFilter(a.user.DefaultCountry, a.client.ProfileCountry)
	return filter.Resolve(ctx, url.Values{country.QueryParam: {flag}})
}

func (a *app) listParams(ctx context.Context, f listFlags) api.ListParams {
	return api.ListParams{
		Page:    f.page,
		Limit:   f.limit,
		Search:  f.search,
		Country: a.resolveCountry(ctx, f.country, f.allCountries),
	}
}

// footer prints pagination and the active filter under a table.
func footer(w io.Writer, meta api.Meta, shown int, countryCode string) {
	scope := "all countries"
	if countryCode != "" {
		scope = countryCode
	}
	if meta.TotalPages > 0 {
		fmt.Fprintf(w, "\n%d of %d (page %d/%d, %s)\n", shown, meta.Total, meta.Page, meta.TotalPages, scope)
		return
	}
	fmt.Fprintf(w, "\n%d of %d (%s)\n", shown, meta.Total, scope)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
