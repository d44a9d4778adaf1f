// Package country resolves the country filter used to scope back-office
// queries. The URL query is the only store of the active filter.
package country

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// QueryParam is the query parameter carrying the active filter.
const QueryParam = "country"

// nameToCode maps lower-cased country names to ISO 3166-1 alpha-2 codes
var nameToCode = map[string]string{
	"senegal":       "SN",
	"france":        "FR",
	"italy":         "IT",
	"spain":         "ES",
	"germany":       "DE",
	"portugal":      "PT",
	"morocco":       "MA",
	"algeria":       "DZ",
	"tunisia":       "TN",
	"côte d'ivoire": "CI",
	"mali":          "ML",
	"burkina faso":  "BF",
	"benin":         "BJ",
	"togo":          "TG",
	"ghana":         "GH",
	"nigeria":       "NG",
	"cameroon":      "CM",
	"gabon":         "GA",
	"congo":         "CG",
}

// Normalize converts a country name or code to an upper-case code. Two-letter
// input is taken as a code; unknown names are upper-cased as-is.
func Normalize(country string) string {
	if country == "" {
		return ""
	}

	if utf8.RuneCountInString(country) == 2 {
		return strings.ToUpper(country)
	}

	if code, ok := nameToCode[strings.ToLower(strings.TrimSpace(country))]; ok {
		return code
	}
	return strings.ToUpper(country)
}

// Derive picks the active filter from, in order: the query parameter, the
// caller default, the profile country. "" means all countries.
func Derive(query url.Values, def, profile string) string {
	if v := query.Get(QueryParam); v != "" {
		return Normalize(v)
	}
	if def != "" {
		return Normalize(def)
	}
	return Normalize(profile)
}

// Set returns a copy of u with the filter set to next, or removed when next
// normalizes to "".
func Set(u *url.URL, next string) *url.URL {
	out := *u
	q := out.Query()

	if normalized := Normalize(next); normalized != "" {
		q.Set(QueryParam, normalized)
	} else {
		q.Del(QueryParam)
	}

	out.RawQuery = q.Encode()
	return &out
}

// ProfileFunc returns the signed-in user's country as stored on the profile.
type ProfileFunc func(ctx context.Context) (string, error)

// Filter derives the active filter, looking up the profile country at most
// once and only when neither the query nor the default provides one.
type Filter struct {
	def     string
	profile ProfileFunc

	once        sync.Once
	userCountry string
}

// NewFilter returns a filter with a caller default and a profile lookup.
// profile may be nil.
func NewFilter(def string, profile ProfileFunc) *Filter {
	return &Filter{def: def, profile: profile}
}

// Resolve returns the active filter for the given query.
func (f *Filter) Resolve(ctx context.Context, query url.Values) string {
	if query.Get(QueryParam) == "" && f.def == "" {
		f.once.Do(func() {
			if f.profile == nil {
				return
			}
			// a failed lookup leaves the filter empty: all countries
			if c, err := f.profile(ctx); err == nil {
				f.userCountry = Normalize(c)
			}
		})
	}
	return Derive(query, f.def, f.userCountry)
}

// Option is a selectable country.
type Option struct {
	Name string
	Code string
}

// Options returns the known countries sorted by display name.
func Options() []Option {
	opts := make([]Option, 0, len(nameToCode))
	for name, code := range nameToCode {
		opts = append(opts, Option{Name: displayName(name), Code: code})
	}
	sort.Slice(opts, func(i, j int) bool {
		return opts[i].Name < opts[j].Name
	})
	return opts
}

// Known reports whether code is one of the codes in the table.
func Known(code string) bool {
	for _, c := range nameToCode {
		if c == code {
			return true
		}
	}
	return false
}

func displayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
