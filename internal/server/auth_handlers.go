package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/country"
	"github.com/wheelx-dev/wheelx/internal/locale"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// defaultLanding is where a login without a redirect ends up.
const defaultLanding = "/private/dashboard"

// LoginRequest is accepted as JSON or as a form post.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// login exchanges credentials for a token, stores the cookie session and
// sends the user to the screen they came from.
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := session.NewCookieStore(c.Writer, c.Request, s.config.HTTP.SecureCookies)
	client := api.New(s.config.API.URL, store,
		api.WithHTTPClient(s.httpClient),
		api.WithLogger(s.logger),
		api.WithMetrics(s.apiMetrics),
	)

	token, err := client.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		var validationErr *api.ValidationError
		var apiErr *api.APIError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login request", "fields": validationErr.Fields})
		case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		default:
			s.logger.Error().Err(err).Msg("Login failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Login failed"})
		}
		return
	}

	if err := store.Write(session.New(token)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.Redirect(http.StatusSeeOther, locale.Localize(c.Param("locale"), safeRedirect(req.Redirect)))
}

func (s *Server) logout(c *gin.Context) {
	store := session.NewCookieStore(c.Writer, c.Request, s.config.HTTP.SecureCookies)
	if err := store.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear session")
	}
	c.Redirect(http.StatusSeeOther, locale.Localize(c.Param("locale"), "/auth/login"))
}

// safeRedirect keeps only same-site logical paths, dropping any locale
// prefix, and falls back to the dashboard.
func safeRedirect(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return defaultLanding
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return defaultLanding
	}
	_, rest := locale.Split(u.Path)
	return withQuery(rest, u.RawQuery)
}

// setCountry applies a country filter to a screen URL and goes back to it.
// An empty country removes the filter.
func (s *Server) setCountry(c *gin.Context) {
	loc := c.Param("locale")

	target := &url.URL{Path: locale.Localize(loc, defaultLanding)}
	if ret := c.Query("return"); ret != "" {
		if u, err := url.Parse(ret); err == nil && u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(ret, "//") {
			if retLoc, rest := locale.Split(u.Path); retLoc == "" {
				u.Path = locale.Localize(loc, rest)
			}
			target = u
		}
	}

	c.Redirect(http.StatusFound, country.Set(target, c.Query(country.QueryParam)).String())
}
