package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/cli/config"
	"github.com/wheelx-dev/wheelx/internal/cli/userconfig"
	"github.com/wheelx-dev/wheelx/internal/journal"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// memStore is an in-memory session.Store.
type memStore struct {
	mu sync.Mutex
	s  session.Session
}

func (m *memStore) Read() (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memStore) Write(s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = session.Session{}
	return nil
}

type call struct {
	Method  string
	Path    string
	Query   string
	Country string
	Body    string
}

// fakeAPI answers "METHOD /path" routes and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]string
	status map[string]int
	calls  []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string]string{}, status: map[string]int{}}
}

func (f *fakeAPI) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = body
	f.status[method+" "+path] = status
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, call{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Country: r.Header.Get(api.HeaderCountry),
		Body:    string(body),
	})
	key := r.Method + " " + r.URL.Path
	resp, ok := f.routes[key]
	status := f.status[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
		return
	}
	w.WriteHeader(status)
	io.WriteString(w, resp)
}

func (f *fakeAPI) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeAPI) count(method, path string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

type testApp struct {
	*app
	api   *fakeAPI
	out   *bytes.Buffer
	store *memStore
}

func newTestApp(t *testing.T, user *userconfig.UserConfig) *testApp {
	t.Helper()
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	if user == nil {
		user = &userconfig.UserConfig{}
	}
	store := &memStore{s: session.New("jwt-test")}
	out := &bytes.Buffer{}
	return &testApp{
		app: &app{
			env:         config.Environment{Alias: "test", APIURL: srv.URL},
			client:      api.New(srv.URL, store),
			store:       store,
			user:        user,
			out:         out,
			errOut:      io.Discard,
			journalPath: filepath.Join(t.TempDir(), "history.db"),
		},
		api:   fake,
		out:   out,
		store: store,
	}
}

func (ta *testApp) history(t *testing.T) []journal.Entry {
	t.Helper()
	j, err := journal.Open(ta.journalPath)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Recent(context.Background(), 50)
	require.NoError(t, err)
	return entries
}

const usersPage = `{"data":[
	{"_id":"u1","username":"moussa","displayName":"Moussa D.","email":"moussa@wheelx.app","country":"SN","role":"rider"},
	{"id":"u2","username":"lea","email":"lea@wheelx.app","isBanned":true}
],"meta":{"total":12,"page":1,"limit":2,"totalPages":6}}`

func TestUsersList_Table(t *testing.T) {
	ta := newTestApp(t, &userconfig.UserConfig{DefaultCountry: "sn"})
	ta.api.on(http.MethodGet, "/users", http.StatusOK, usersPage)

	err := runUsersList(context.Background(), ta.app, listFlags{page: 1, limit: 2, output: outputTable})
	require.NoError(t, err)

	out := ta.out.String()
	assert.Contains(t, out, "Moussa D.")
	assert.Contains(t, out, "moussa@wheelx.app")
	assert.Contains(t, out, "2 of 12 (page 1/6, SN)")

	calls := ta.api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "SN", calls[0].Country)
	assert.Contains(t, calls[0].Query, "country=SN")
	assert.Contains(t, calls[0].Query, "limit=2")
}

func TestUsersList_JSONAndYAML(t *testing.T) {
	ta := newTestApp(t, &userconfig.UserConfig{DefaultCountry: "SN"})
	ta.api.on(http.MethodGet, "/users", http.StatusOK, usersPage)

	require.NoError(t, runUsersList(context.Background(), ta.app, listFlags{output: outputJSON}))
	var page api.Page[api.User]
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "u1", page.Data[0].Key())
	assert.Equal(t, 12, page.Meta.Total)

	ta.out.Reset()
	require.NoError(t, runUsersList(context.Background(), ta.app, listFlags{output: outputYAML}))
	var doc struct {
		Data []map[string]any `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(ta.out.Bytes(), &doc))
	require.Len(t, doc.Data, 2)
	assert.Equal(t, "u1", doc.Data[0]["_id"])
	assert.Equal(t, true, doc.Data[1]["isBanned"])
}

func TestUsersList_EmptyOnFailure(t *testing.T) {
	ta := newTestApp(t, &userconfig.UserConfig{DefaultCountry: "SN"})
	ta.api.on(http.MethodGet, "/users", http.StatusInternalServerError, `{"message":"boom"}`)

	require.NoError(t, runUsersList(context.Background(), ta.app, listFlags{output: outputTable}))
	assert.Contains(t, ta.out.String(), "No users found.")
}

func TestResolveCountry(t *testing.T) {
	ctx := context.Background()

	t.Run("flag wins over default", func(t *testing.T) {
		ta := newTestApp(t, &userconfig.UserConfig{DefaultCountry: "SN"})
		assert.Equal(t, "FR", ta.resolveCountry(ctx, "france", false))
		assert.Zero(t, ta.api.count(http.MethodGet, "/users/me"))
	})

	t.Run("all countries skips the profile", func(t *testing.T) {
		ta := newTestApp(t, nil)
		assert.Equal(t, "", ta.resolveCountry(ctx, "", true))
		assert.Zero(t, ta.api.count(http.MethodGet, "/users/me"))
	})

	t.Run("profile country as last resort", func(t *testing.T) {
		ta := newTestApp(t, nil)
		ta.api.on(http.MethodGet, "/users/me", http.StatusOK, `{"data":{"id":"me","username":"admin","country":"Côte d'Ivoire"}}`)
		assert.Equal(t, "CI", ta.resolveCountry(ctx, "", false))
		assert.Equal(t, 1, ta.api.count(http.MethodGet, "/users/me"))
	})

	t.Run("profile failure means all countries", func(t *testing.T) {
		ta := newTestApp(t, nil)
		assert.Equal(t, "", ta.resolveCountry(ctx, "", false))
	})
}

func TestBan_RecordsHistory(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodPatch, "/users/u1/ban", http.StatusOK, `{"success":true}`)

	require.NoError(t, runBan(context.Background(), ta.app, "u1", true))
	assert.Contains(t, ta.out.String(), "✓ Banned user u1")

	err := runBan(context.Background(), ta.app, "u1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.unban u1 failed")

	entries := ta.history(t)
	require.Len(t, entries, 2)
	byAction := map[string]journal.Entry{}
	for _, e := range entries {
		byAction[e.Action] = e
	}
	assert.True(t, byAction["users.ban"].Success)
	assert.False(t, byAction["users.unban"].Success)
	assert.Equal(t, "test", byAction["users.ban"].Environment)
}

func TestPerform_NoJournal(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.journalPath = ""

	err := ta.perform(context.Background(), "posts.delete", "p1", "Deleted post p1", func(context.Context) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, "✓ Deleted post p1\n", ta.out.String())
}

func TestToggleFeature(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodPatch, "/countries/SN/features", http.StatusOK, `{"success":true}`)

	require.NoError(t, runToggleFeature(context.Background(), ta.app, "SN", "wave", false))

	calls := ta.api.recorded()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"wave":false}`, calls[0].Body)
	assert.Contains(t, ta.out.String(), "wave disabled for SN")
}

func TestNotify(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodPost, "/notifications/broadcast", http.StatusOK, `{"success":true}`)
	ta.api.on(http.MethodPost, "/notifications/broadcast/country/SN", http.StatusOK, `{"success":true}`)
	ctx := context.Background()

	require.NoError(t, runNotify(ctx, ta.app, "", " Rally ", "Sunday 9am"))
	require.NoError(t, runNotify(ctx, ta.app, "SN", "Rally", "Dakar, Sunday 9am"))

	calls := ta.api.recorded()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"title":"Rally","message":"Sunday 9am"}`, calls[0].Body)
	assert.Equal(t, "/notifications/broadcast/country/SN", calls[1].Path)

	// empty title is rejected before any request
	require.Error(t, runNotify(ctx, ta.app, "", "", "body"))
	assert.Len(t, ta.api.recorded(), 2)
}

func TestInsuranceList(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodGet, "/insurance-requests", http.StatusOK, `{"data":{"data":[{
		"_id":"i1","status":"pending",
		"userId":{"username":"awa","email":"awa@wheelx.app"},
		"motorcycleId":{"brand":"Yamaha","model":"MT-07","year":2022},
		"requestData":{"coverageType":"comprehensive","startDate":"2026-11-01","duration":12}
	}],"meta":{"total":1,"page":1,"limit":10,"totalPages":1}}}`)

	require.NoError(t, runInsuranceList(context.Background(), ta.app, 1, 10, api.InsurancePending, outputTable))

	out := ta.out.String()
	assert.Contains(t, out, "awa")
	assert.Contains(t, out, "Yamaha MT-07 (2022)")
	assert.Contains(t, out, "comprehensive")

	calls := ta.api.recorded()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Query, "status=pending")
}

func TestStats(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodGet, "/admin/stats", http.StatusOK, `{"data":{"users":{"total":40,"active":30,"banned":2,"newThisMonth":5},"rides":{"total":90,"totalDistance":1234.5}}}`)

	require.NoError(t, runStats(context.Background(), ta.app, "MA", false, outputTable))
	out := ta.out.String()
	assert.Contains(t, out, "Dashboard (MA)")
	assert.Contains(t, out, "total 40")
	assert.Contains(t, out, "1234.5 km")

	ta.api.on(http.MethodGet, "/admin/stats", http.StatusBadGateway, `{}`)
	assert.Error(t, runStats(context.Background(), ta.app, "MA", false, outputTable))
}

func TestCountryShow(t *testing.T) {
	ta := newTestApp(t, &userconfig.UserConfig{DefaultCountry: "GH"})
	require.NoError(t, runCountryShow(context.Background(), ta.app))
	assert.Equal(t, "GH (saved default)\n", ta.out.String())

	ta = newTestApp(t, nil)
	require.NoError(t, runCountryShow(context.Background(), ta.app))
	assert.Equal(t, "All countries\n", ta.out.String())
}

func TestLoginAndWhoami(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "me",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	ta := newTestApp(t, nil)
	ta.store.s = session.Session{}
	ta.api.on(http.MethodPost, "/auth/login", http.StatusOK, `{"data":{"accessToken":"`+token+`"}}`)
	ta.api.on(http.MethodGet, "/users/me", http.StatusOK, `{"id":"me","username":"admin","email":"admin@wheelx.app","country":"SN"}`)

	require.NoError(t, runLogin(context.Background(), ta.app, "admin@wheelx.app", "hunter22"))
	assert.Equal(t, session.New(token), ta.store.s)
	assert.Contains(t, ta.out.String(), "Role:        admin")

	ta.out.Reset()
	require.NoError(t, runWhoami(context.Background(), ta.app))
	assert.Contains(t, ta.out.String(), "admin (admin@wheelx.app)")
	assert.Contains(t, ta.out.String(), "Country: SN")
}

func TestLogin_BadCredentials(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.api.on(http.MethodPost, "/auth/login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	err := runLogin(context.Background(), ta.app, "admin@wheelx.app", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
	// the previous session is kept
	assert.Equal(t, session.New("jwt-test"), ta.store.s)
}

func TestWhoami_SignedOut(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.store.s = session.Session{AdminMarker: session.ActiveMarker}

	err := runWhoami(context.Background(), ta.app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	_, err = j.Record(context.Background(), "routes.delete", "r7", "production", true)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &out, path, 10, outputTable))
	assert.Contains(t, out.String(), "routes.delete")
	assert.Contains(t, out.String(), "r7")

	assert.Error(t, runHistory(context.Background(), &out, "", 10, outputTable))
}

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{outputTable, outputJSON, outputYAML} {
		assert.NoError(t, validateOutput(f))
	}
	assert.ErrorIs(t, validateOutput("xml"), errUnknownOutput)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))

	assert.Equal(t, "0", riders(nil))
	assert.Equal(t, "3 (awa, lea, +1)", riders([]api.RideParticipant{
		{Username: "awa"}, {Username: "lea"}, {Username: "kofi"},
	}))

	assert.Equal(t, "Wave, Garages, beta", enabledFeatures(map[string]bool{
		"garages": true, "wave": true, "stripe": false, "beta": true,
	}))

	var buf bytes.Buffer
	printSnapshot(&buf, []api.ActiveRide{{Code: "RIDE42", Status: "active"}}, "", time.Date(2026, 5, 1, 8, 30, 0, 0, time.Local))
	assert.True(t, strings.HasPrefix(buf.String(), "\n08:30:00  1 active (all countries)\n"))
	assert.Contains(t, buf.String(), "RIDE42")
}
