package api

import (
	"net/url"

	"github.com/wheelx-dev/wheelx/internal/locale"
)

// Navigator is where the client sends a session that lost its authorization.
// Location is the place the user was on; it may be nil.
type Navigator interface {
	Location() *url.URL
	Navigate(target string)
}

type noopNavigator struct{}

func (noopNavigator) Location() *url.URL { return nil }
func (noopNavigator) Navigate(string)    {}

// handleUnauthorized clears the session and navigates to the login screen,
// passing the logical path the user was on as the return target. Repeated
// and concurrent calls converge on the same cleared state and target.
func (c *Client) handleUnauthorized() {
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to clear session")
		}
	}
	c.navigator.Navigate(locale.LoginRedirect(c.navigator.Location()))
}
