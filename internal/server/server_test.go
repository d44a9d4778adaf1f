package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelx-dev/wheelx/internal/config"
	"github.com/wheelx-dev/wheelx/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstreamCall struct {
	Method  string
	Path    string
	Query   url.Values
	Auth    string
	Country string
	Body    string
}

// fakeUpstream stands in for the WheelX API.
type fakeUpstream struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter)
	calls  []upstreamCall
}

func (f *fakeUpstream) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Auth:    r.Header.Get("Authorization"),
		Country: r.Header.Get("x-country"),
		Body:    string(body),
	})
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
		return
	}
	handler(w)
}

func (f *fakeUpstream) recorded() []upstreamCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upstreamCall(nil), f.calls...)
}

// fakeMailer records inquiries and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []PartnerInquiry
	err  error
}

func (m *fakeMailer) SendInquiry(ctx context.Context, in PartnerInquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, in)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeUpstream, *fakeMailer) {
	t.Helper()
	up := &fakeUpstream{routes: map[string]func(http.ResponseWriter){}}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API:  config.APIConfig{URL: srv.URL},
		HTTP: config.HTTPConfig{Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
	}
	mailer := &fakeMailer{}
	return New(cfg, zerolog.Nop(), "test", WithMailer(mailer)), up, mailer
}

func do(s *Server, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func tokenCookie(token string) *http.Cookie {
	return &http.Cookie{Name: session.TokenCookie, Value: token}
}

func setCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestLocaleRedirect(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		target   string
		wantCode int
		wantLoc  string
	}{
		{"/private/users?page=2", http.StatusTemporaryRedirect, "/en/private/users?page=2"},
		{"/de/private/users", http.StatusTemporaryRedirect, "/en/de/private/users"},
		{"/fr/nowhere", http.StatusNotFound, ""},
		{"/api/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(s, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}

func TestPrivateGuard(t *testing.T) {
	s, up, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/fr/private/api/users?page=2", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fr/auth/login?redirect=%2Fprivate%2Fusers%3Fpage%3D2", rec.Header().Get("Location"))
	assert.Empty(t, up.recorded())

	// the marker cookie alone is enough to pass the guard
	up.on(http.MethodGet, "/users", http.StatusOK, `[]`)
	rec = do(s, http.MethodGet, "/fr/private/api/users", "", &http.Cookie{Name: session.AdminCookie, Value: session.ActiveMarker})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProxy(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodGet, "/users", http.StatusOK, `{"data":{"data":[{"_id":"u1","username":"awa"}],"meta":{"total":31,"page":2,"limit":10,"totalPages":4}}}`)

	rec := do(s, http.MethodGet, "/en/private/api/users?page=2&search=awa%20d&country=senegal", "", tokenCookie("jwt-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data []map[string]any `json:"data"`
		Meta map[string]int   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "u1", page.Data[0]["_id"])
	assert.Equal(t, 31, page.Meta["total"])

	calls := up.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer jwt-1", calls[0].Auth)
	assert.Equal(t, "SN", calls[0].Country)
	assert.Equal(t, "2", calls[0].Query.Get("page"))
	assert.Equal(t, "10", calls[0].Query.Get("limit"))
	assert.Equal(t, "awa d", calls[0].Query.Get("search"))
	assert.Equal(t, "SN", calls[0].Query.Get("country"))
}

func TestListProxy_ProfileCountry(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodGet, "/users/me", http.StatusOK, `{"data":{"id":"me","country":"ma"}}`)
	up.on(http.MethodGet, "/active-rides/all/active", http.StatusOK, `{"data":[{"code":"RIDE1","status":"active"}]}`)

	rec := do(s, http.MethodGet, "/en/private/api/active-rides", "", tokenCookie("jwt"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RIDE1")

	calls := up.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "/users/me", calls[0].Path)
	assert.Equal(t, "MA", calls[1].Query.Get("country"))
}

func TestUpstreamUnauthorized(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodGet, "/posts", http.StatusUnauthorized, `{"message":"jwt expired"}`)

	rec := do(s, http.MethodGet, "/fr/private/api/posts?page=2&country=SN", "",
		tokenCookie("stale"), &http.Cookie{Name: session.AdminCookie, Value: session.ActiveMarker})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, "/fr/auth/login?redirect=%2Fprivate%2Fposts%3Fpage%3D2%26country%3DSN", body["redirect"])

	cookies := setCookies(rec)
	require.Contains(t, cookies, session.TokenCookie)
	require.Contains(t, cookies, session.AdminCookie)
	assert.Empty(t, cookies[session.TokenCookie].Value)
	assert.True(t, cookies[session.TokenCookie].MaxAge < 0)
}

func TestMutations(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodPatch, "/users/u1/ban", http.StatusOK, `{"success":true}`)
	up.on(http.MethodPost, "/garages/g1/delete", http.StatusOK, `{}`)
	up.on(http.MethodPatch, "/countries/SN/features", http.StatusOK, `{}`)
	up.on(http.MethodPost, "/notifications/broadcast/country/CI", http.StatusOK, `{}`)
	up.on(http.MethodPatch, "/insurance-requests/i1/reject", http.StatusOK, `{}`)

	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		wantSuccess bool
	}{
		{"ban", http.MethodPatch, "/en/private/api/users/u1/ban", "", true},
		{"delete garage", http.MethodPost, "/en/private/api/garages/g1/delete", "", true},
		{"delete post fails upstream", http.MethodDelete, "/en/private/api/posts/p1", "", false},
		{"features", http.MethodPatch, "/en/private/api/countries/sn/features", `{"wave":true}`, true},
		{"broadcast to country", http.MethodPost, "/en/private/api/notifications/broadcast", `{"title":"Rally","message":"Sunday","country":"Côte d'Ivoire"}`, true},
		{"reject", http.MethodPatch, "/en/private/api/insurance-requests/i1/reject", `{"rejectionReason":"Documents are unreadable"}`, true},
		{"reject too short", http.MethodPatch, "/en/private/api/insurance-requests/i1/reject", `{"rejectionReason":"no"}`, false},
		{"approve missing fields", http.MethodPatch, "/en/private/api/insurance-requests/i1/approve", `{"provider":"AXA"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.target, tt.body, tokenCookie("jwt"))
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]bool
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantSuccess, body["success"])
		})
	}

	// validation failures never reach the API
	for _, c := range up.recorded() {
		assert.NotEqual(t, "/insurance-requests/i1/approve", c.Path)
	}
	var rejects int
	for _, c := range up.recorded() {
		if c.Path == "/insurance-requests/i1/reject" {
			rejects++
			assert.JSONEq(t, `{"rejectionReason":"Documents are unreadable"}`, c.Body)
		}
	}
	assert.Equal(t, 1, rejects)
}

func TestMutation_BadBody(t *testing.T) {
	s, up, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/en/private/api/garages", `{"name":`, tokenCookie("jwt"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, up.recorded())
}

func TestLogin(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodPost, "/auth/login", http.StatusOK, `{"data":{"accessToken":"jwt-new"}}`)

	t.Run("json", func(t *testing.T) {
		rec := do(s, http.MethodPost, "/fr/auth/login", `{"email":"admin@wheelx.app","password":"pw","redirect":"/private/users?page=2"}`)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/fr/private/users?page=2", rec.Header().Get("Location"))

		cookies := setCookies(rec)
		require.Contains(t, cookies, session.TokenCookie)
		assert.Equal(t, "jwt-new", cookies[session.TokenCookie].Value)
		assert.Equal(t, session.ActiveMarker, cookies[session.AdminCookie].Value)
		assert.Equal(t, 86400, cookies[session.TokenCookie].MaxAge)
	})

	t.Run("form without redirect", func(t *testing.T) {
		form := url.Values{"email": {"admin@wheelx.app"}, "password": {"pw"}}
		req := httptest.NewRequest(http.MethodPost, "/es/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/es/private/dashboard", rec.Header().Get("Location"))
	})

	t.Run("foreign redirect is ignored", func(t *testing.T) {
		rec := do(s, http.MethodPost, "/en/auth/login", `{"email":"admin@wheelx.app","password":"pw","redirect":"//evil.example/x"}`)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/en/private/dashboard", rec.Header().Get("Location"))
	})
}

func TestLogin_Failures(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodPost, "/auth/login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	rec := do(s, http.MethodPost, "/en/auth/login", `{"email":"admin@wheelx.app","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = do(s, http.MethodPost, "/en/auth/login", `{"email":"not-an-email","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
}

func TestLogout(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/it/auth/logout", "", tokenCookie("jwt"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/it/auth/login", rec.Header().Get("Location"))

	cookies := setCookies(rec)
	assert.Empty(t, cookies[session.TokenCookie].Value)
	assert.Empty(t, cookies[session.AdminCookie].Value)
}

func TestSetCountry(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"set by name", "/fr/private/country?country=senegal&return=" + url.QueryEscape("/fr/private/users?page=2"), "/fr/private/users?country=SN&page=2"},
		{"clear", "/fr/private/country?country=&return=" + url.QueryEscape("/fr/private/users?country=SN"), "/fr/private/users"},
		{"return without locale", "/es/private/country?country=ng&return=" + url.QueryEscape("/private/events"), "/es/private/events?country=NG"},
		{"foreign return", "/en/private/country?country=FR&return=" + url.QueryEscape("https://evil.example/"), "/en/private/dashboard?country=FR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodGet, tt.target, "", tokenCookie("jwt"))
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestContactPartner(t *testing.T) {
	valid := `{"name":"Awa","email":"awa@garage.sn","company":"Garage Awa","category":"garage","message":"Hello\nWe fix bikes"}`

	t.Run("sent", func(t *testing.T) {
		s, _, mailer := newTestServer(t)
		rec := do(s, http.MethodPost, "/api/contact-partner", valid)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Email sent successfully"}`, rec.Body.String())
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "Garage Awa", mailer.sent[0].Company)
	})

	t.Run("missing field", func(t *testing.T) {
		s, _, mailer := newTestServer(t)
		rec := do(s, http.MethodPost, "/api/contact-partner", `{"name":"Awa","email":"awa@garage.sn","company":" ","category":"garage","message":"hi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"All fields are required"}`, rec.Body.String())
		assert.Empty(t, mailer.sent)
	})

	t.Run("invalid email", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		rec := do(s, http.MethodPost, "/api/contact-partner", `{"name":"Awa","email":"awa-at-garage","company":"G","category":"garage","message":"hi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid email address"}`, rec.Body.String())
	})

	t.Run("send failure", func(t *testing.T) {
		s, _, mailer := newTestServer(t)
		mailer.err = errors.New("relay down")
		rec := do(s, http.MethodPost, "/api/contact-partner", valid)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to send email"}`, rec.Body.String())
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s, up, _ := newTestServer(t)
	up.on(http.MethodGet, "/countries", http.StatusOK, `[{"code":"SN","name":"Senegal"}]`)

	rec := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"online"`)

	rec = do(s, http.MethodGet, "/en/private/api/countries", "", tokenCookie("jwt"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `wheelx_api_client_calls_total{outcome="ok",resource="countries"} 1`)
	assert.Contains(t, body, `wheelx_gateway_requests_total{method="GET",route="/:locale/private/api/countries",status="200"} 1`)
}
