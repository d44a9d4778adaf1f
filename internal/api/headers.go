package api

import (
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	// HeaderCountry scopes a request to one ISO-3166 alpha-2 country.
	HeaderCountry = "x-country"

	// HeaderRequestID carries a client-generated correlation id.
	HeaderRequestID = "x-request-id"
)

// randomUUID is swapped in tests to exercise the fallback.
var randomUUID = uuid.NewRandom

// buildHeaders composes the outgoing headers from the current session and the
// optional country. It only reads the session.
func (c *Client) buildHeaders(country string) http.Header {
	h := http.Header{}

	if token := c.bearerToken(); token != "" {
		h.Set(HeaderAuthorization, "Bearer "+token)
	}
	if country != "" {
		h.Set(HeaderCountry, strings.ToUpper(country))
	}
	h.Set(HeaderRequestID, newRequestID())

	return h
}

func (c *Client) bearerToken() string {
	if c.store == nil {
		return ""
	}
	s, err := c.store.Read()
	if err != nil {
		c.logger.Debug().Err(err).Msg("Session unreadable, sending request without credentials")
		return ""
	}
	return s.BearerToken()
}

// newRequestID returns a random UUID, or a time+random ULID when the random
// source is unavailable.
func newRequestID() string {
	if id, err := randomUUID(); err == nil {
		return id.String()
	}
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return "req_" + ulid.MustNew(ulid.Now(), entropy).String()
}
