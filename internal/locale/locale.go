// Package locale handles the locale prefix of back-office paths and the
// login redirects that must preserve it.
package locale

import (
	"net/url"
	"slices"
	"strings"
)

// Default is used when a path carries no locale and one is required.
const Default = "en"

// Supported lists the locale codes that may prefix a path.
var Supported = []string{"en", "fr", "es", "it"}

const loginPath = "/auth/login"

// IsSupported reports whether s is one of the supported locale codes.
func IsSupported(s string) bool {
	return slices.Contains(Supported, s)
}

// Split detects a leading locale segment and returns it together with the
// logical path. The logical path always starts with "/".
func Split(path string) (loc, rest string) {
	segments := strings.Split(path, "/")
	if len(segments) > 1 && IsSupported(segments[1]) {
		return segments[1], "/" + strings.Join(segments[2:], "/")
	}

	if path == "" {
		return "", "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "", "/" + path
	}
	return "", path
}

// Localize prefixes a logical path with a locale.
func Localize(loc, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if loc == "" {
		return path
	}
	return "/" + loc + path
}

// LoginRedirect computes the login URL for a session that became
// unauthorized while on u. The locale prefix is kept only if u had one and
// the logical path plus query travel in the redirect parameter.
func LoginRedirect(u *url.URL) string {
	if u == nil {
		return loginPath + "?redirect=" + EncodeComponent("/")
	}

	loc, rest := Split(u.Path)
	target := rest
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	return Localize(loc, loginPath) + "?redirect=" + EncodeComponent(target)
}

// GuardRedirect is the login URL used by the private route guard. Unlike
// LoginRedirect it always carries a locale, falling back to Default.
func GuardRedirect(u *url.URL) string {
	loc, rest := Split(u.Path)
	if loc == "" {
		loc = Default
	}

	target := rest
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	q := url.Values{}
	q.Set("redirect", target)
	return Localize(loc, loginPath) + "?" + q.Encode()
}

// EncodeComponent escapes s the way browsers' encodeURIComponent does:
// everything except ASCII letters, digits and -_.!~*'() is percent-encoded.
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
