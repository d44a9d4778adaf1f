package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/wheelx-dev/wheelx/internal/locale"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// unlocalized are the top-level segments served without a locale.
var unlocalized = []string{"api", "health", "metrics"}

// localeRedirect sends paths without a locale to the default one. Anything
// else that matched no route is a 404.
func (s *Server) localeRedirect(c *gin.Context) {
	segment := strings.SplitN(strings.TrimPrefix(c.Request.URL.Path, "/"), "/", 2)[0]
	if locale.IsSupported(segment) || isUnlocalized(segment) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, withQuery(locale.Localize(locale.Default, c.Request.URL.Path), c.Request.URL.RawQuery))
}

// requireLocale redirects /<unknown>/... to the default locale.
func (s *Server) requireLocale() gin.HandlerFunc {
	return func(c *gin.Context) {
		if locale.IsSupported(c.Param("locale")) {
			c.Next()
			return
		}
		s.localeRedirect(c)
		c.Abort()
	}
}

// privateGuard lets a request through when either session cookie is set.
// The token is not checked here; the API rejects it if it is stale.
func (s *Server) privateGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := session.NewCookieStore(c.Writer, c.Request, s.config.HTTP.SecureCookies).Read()
		if sess.Present() {
			c.Next()
			return
		}

		target := locale.GuardRedirect(screenURL(c.Request.URL))
		s.logger.Debug().Str("path", c.Request.URL.Path).Str("redirect", target).Msg("No session, redirecting to login")
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

func isUnlocalized(segment string) bool {
	for _, s := range unlocalized {
		if s == segment {
			return true
		}
	}
	return false
}

func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// screenURL maps a data endpoint to the screen it feeds, e.g.
// /fr/private/api/users?page=2 to /fr/private/users?page=2.
func screenURL(u *url.URL) *url.URL {
	loc, rest := locale.Split(u.Path)
	if after, ok := strings.CutPrefix(rest, "/private/api/"); ok {
		rest = "/private/" + after
	}
	return &url.URL{Path: locale.Localize(loc, rest), RawQuery: u.RawQuery}
}

// gatewayNavigator remembers the login target chosen by the API client
// after an upstream 401.
type gatewayNavigator struct {
	location *url.URL

	mu     sync.Mutex
	target string
}

func (n *gatewayNavigator) Location() *url.URL { return n.location }

func (n *gatewayNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = target
}

// respond answers 401 with the login target if the session was rejected.
func (n *gatewayNavigator) respond(c *gin.Context) bool {
	n.mu.Lock()
	target := n.target
	n.mu.Unlock()

	if target == "" {
		return false
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": target})
	return true
}
