package session

import (
	"net/http"
	"sync"
)

// CookieStore keeps the session in the request/response cookie pair of a
// single HTTP exchange.
type CookieStore struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool

	mu      sync.Mutex
	written *Session
}

// NewCookieStore binds a store to one request and its response writer.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{r: r, w: w, secure: secure}
}

// Read returns the session from the request cookies, or what this store has
// written or cleared during the exchange.
func (c *CookieStore) Read() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.written != nil {
		return *c.written, nil
	}

	return Session{
		AdminMarker: cookieValue(c.r, AdminCookie),
		Token:       cookieValue(c.r, TokenCookie),
	}, nil
}

func (c *CookieStore) Write(s Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	http.SetCookie(c.w, c.cookie(AdminCookie, s.AdminMarker, int(MaxAge.Seconds())))
	if s.Token != "" {
		http.SetCookie(c.w, c.cookie(TokenCookie, s.Token, int(MaxAge.Seconds())))
	}
	c.written = &s
	return nil
}

func (c *CookieStore) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// MaxAge -1 emits Max-Age=0
	http.SetCookie(c.w, c.cookie(AdminCookie, "", -1))
	http.SetCookie(c.w, c.cookie(TokenCookie, "", -1))
	c.written = &Session{}
	return nil
}

func (c *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
