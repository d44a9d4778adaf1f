package session

import "time"

const (
	// AdminCookie marks an admin-flavored session for route guards. It does not
	// carry a credential in current sessions.
	AdminCookie = "wheelx_admin_token"
	// TokenCookie holds the bearer token sent to the API.
	TokenCookie = "wheelx_token"

	// ActiveMarker is the sentinel value written to AdminCookie at login.
	ActiveMarker = "active"

	// MaxAge is the lifetime of both session cookies.
	MaxAge = 24 * time.Hour
)

// Session is the authentication state derived from the two session values.
type Session struct {
	AdminMarker string `json:"admin_marker"`
	Token       string `json:"token"`
}

// Store reads and writes the session. Clear must be idempotent.
type Store interface {
	Read() (Session, error)
	Write(s Session) error
	Clear() error
}

// BearerToken returns the credential to send as Authorization, or "" when the
// session is unauthenticated. The bearer token takes precedence over the
// marker; a marker is only used as a credential when it is not the sentinel.
func (s Session) BearerToken() string {
	token := s.Token
	if token == "" && s.AdminMarker != ActiveMarker {
		token = s.AdminMarker
	}

	if token == "" || token == "undefined" || token == "null" {
		return ""
	}
	return token
}

// Present reports whether either session value is set. Route guards use it;
// it says nothing about whether the token is usable.
func (s Session) Present() bool {
	return s.AdminMarker != "" || s.Token != ""
}

// New returns the session written at login.
func New(token string) Session {
	return Session{
		AdminMarker: ActiveMarker,
		Token:       token,
	}
}
