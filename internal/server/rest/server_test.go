package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/logging"
	"github.com/Skandeerkefi/luckywData/internal/server/auth"
	"github.com/Skandeerkefi/luckywData/internal/server/models"
	"github.com/Skandeerkefi/luckywData/internal/server/repositories/users"
	"github.com/Skandeerkefi/luckywData/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

// ---- fakes ----

type fakeAffiliates struct {
	body json.RawMessage
	err  error

	gotStart, gotEnd string
}

func (f *fakeAffiliates) Fetch(ctx context.Context, startAt, endAt string) (json.RawMessage, error) {
	f.gotStart, f.gotEnd = startAt, endAt
	return f.body, f.err
}

type fakeUsers struct {
	regErr   error
	loginErr error
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	return nil, f.regErr
}

func (f *fakeUsers) Login(ctx context.Context, kickUsername, password string) (*services.LoginResult, error) {
	return nil, f.loginErr
}

func (f *fakeUsers) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, common.ErrTokenMalformed
}

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.New(io.Discard, "error", "json")
}

type testEnv struct {
	srv        *HTTPServer
	http       *httptest.Server
	affiliates *fakeAffiliates
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(testSecret, auth.DefaultTokenValidity)
	require.NoError(t, err)

	us := services.NewUserService(users.NewMemoryRepository(), auth.NewBcryptHasher(bcrypt.MinCost), issuer, testLogger())
	af := &fakeAffiliates{body: json.RawMessage(`{"affiliates":[]}`)}

	s := NewHTTPServer("127.0.0.1:0", testLogger(), us, af, opts...)
	s.Mount("/api/slot-calls", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "no claims", "")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"kickUsername": claims.KickUsername, "path": r.URL.Path})
	}))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{srv: s, http: ts, affiliates: af}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(bytes.TrimSpace(raw)) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

const aliceRegistration = `{"kickUsername":"alice","rainbetUsername":"alice_r","password":"p@ss","confirmPassword":"p@ss"}`

// ---- auth flow ----

func TestRegisterLoginAndUseToken(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/auth/register", aliceRegistration, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["kickUsername"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "rainbetUsername")

	resp, body = e.do(t, http.MethodPost, "/api/auth/login", `{"kickUsername":"alice","password":"p@ss"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, user["id"], body["user"].(map[string]any)["id"])

	resp, body = e.do(t, http.MethodGet, "/api/auth/me", "", bearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["kickUsername"])
	assert.Equal(t, user["id"], body["id"])

	resp, body = e.do(t, http.MethodGet, "/api/slot-calls/today", "", bearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["kickUsername"])
	assert.Equal(t, "/api/slot-calls/today", body["path"])
}

func TestRegister_Errors(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodPost, "/api/auth/register", aliceRegistration, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name    string
		body    string
		message string
		code    string
	}{
		{
			name:    "duplicate kick handle",
			body:    `{"kickUsername":"alice","rainbetUsername":"x","password":"a","confirmPassword":"a"}`,
			message: "Username already exists.",
			code:    services.CodeConflict,
		},
		{
			name:    "duplicate rainbet handle",
			body:    `{"kickUsername":"bob","rainbetUsername":"alice_r","password":"a","confirmPassword":"a"}`,
			message: "Username already exists.",
			code:    services.CodeConflict,
		},
		{
			name:    "password mismatch",
			body:    `{"kickUsername":"carol","rainbetUsername":"carol_r","password":"a","confirmPassword":"b"}`,
			message: "Passwords do not match.",
			code:    services.CodePasswordMismatch,
		},
		{
			name:    "missing handle",
			body:    `{"rainbetUsername":"dave_r","password":"a","confirmPassword":"a"}`,
			message: "kickUsername, rainbetUsername and password are required.",
			code:    services.CodeInvalidInput,
		},
		{name: "malformed json", body: `{"kickUsername":`, message: msgBadRequest, code: codeBadRequest},
		{name: "unknown field", body: `{"kickUsername":"a","admin":true}`, message: msgBadRequest, code: codeBadRequest},
		{name: "trailing data", body: aliceRegistration + `{}`, message: msgBadRequest, code: codeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(t, http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRegister_BodyTooLarge(t *testing.T) {
	e := newTestEnv(t)

	big := `{"kickUsername":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(big))
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Errors(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodPost, "/api/auth/register", aliceRegistration, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/auth/login", `{"kickUsername":"ghost","password":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found.", body["message"])

	resp, body = e.do(t, http.MethodPost, "/api/auth/login", `{"kickUsername":"alice","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", body["message"])
	assert.NotContains(t, body, "token")

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	s := NewHTTPServer("", testLogger(), &fakeUsers{
		regErr:   errors.New("db exploded at 10.0.0.3"),
		loginErr: common.ErrorInternal,
	}, &fakeAffiliates{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	e := &testEnv{srv: s, http: ts}

	for _, path := range []string{"/api/auth/register", "/api/auth/login"} {
		body := aliceRegistration
		if path == "/api/auth/login" {
			body = `{"kickUsername":"alice","password":"p"}`
		}
		resp, out := e.do(t, http.MethodPost, path, body, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, msgInternal, out["message"])
		assert.Equal(t, services.CodeInternal, out["code"])
	}
}

// ---- bearer middleware ----

func TestRequireAuth_Rejects(t *testing.T) {
	e := newTestEnv(t)

	past := time.Now().Add(-8 * 24 * time.Hour)
	oldIssuer, err := auth.NewTokenIssuer(testSecret, auth.DefaultTokenValidity, auth.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	expired, _, err := oldIssuer.Issue(auth.TokenSubject{UserID: "u1", Role: models.RoleUser, KickUsername: "alice"})
	require.NoError(t, err)

	otherIssuer, err := auth.NewTokenIssuer([]byte("other-secret"), auth.DefaultTokenValidity)
	require.NoError(t, err)
	forged, _, err := otherIssuer.Issue(auth.TokenSubject{UserID: "u1", Role: models.RoleAdmin, KickUsername: "alice"})
	require.NoError(t, err)

	for name, header := range map[string]map[string]string{
		"no header":    nil,
		"wrong scheme": {"Authorization": "Basic YWxpY2U6cA=="},
		"empty bearer": {"Authorization": "Bearer "},
		"garbage":      bearer("not-a-token"),
		"expired":      bearer(expired),
		"wrong secret": bearer(forged),
	} {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/api/slot-calls", "/api/slot-calls/x", "/api/auth/me"} {
				resp, body := e.do(t, http.MethodGet, path, "", header)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

// ---- misc routes ----

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Roobet Leaderboard API is running", body["message"])
	assert.NotEmpty(t, resp.Header.Get(common.RequestIDHeaderName))
}

func TestRequestIDIsEchoed(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(t, http.MethodGet, "/health", "", map[string]string{common.RequestIDHeaderName: "req-42"})
	assert.Equal(t, "req-42", resp.Header.Get(common.RequestIDHeaderName))
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, body["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)

	e.do(t, http.MethodGet, "/health", "", nil)

	resp, err := e.http.Client().Get(e.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `luckyw_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
}

// ---- affiliates ----

func TestAffiliates(t *testing.T) {
	e := newTestEnv(t)

	t.Run("missing parameters", func(t *testing.T) {
		for _, q := range []string{"", "?start_at=a", "?end_at=b"} {
			resp, body := e.do(t, http.MethodGet, "/api/affiliates"+q, "", nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Missing start_at or end_at parameter", body["error"])
		}
	})

	t.Run("passes upstream body through", func(t *testing.T) {
		e.affiliates.err = nil
		resp, body := e.do(t, http.MethodGet, "/api/affiliates?start_at=2024-01-01&end_at=2024-01-31", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []any{}, body["affiliates"])
		assert.Equal(t, "2024-01-01", e.affiliates.gotStart)
		assert.Equal(t, "2024-01-31", e.affiliates.gotEnd)
	})

	t.Run("upstream failure", func(t *testing.T) {
		e.affiliates.err = errors.New("upstream error: status 502 key=secret")
		resp, body := e.do(t, http.MethodGet, "/api/affiliates?start_at=a&end_at=b", "", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Failed to fetch affiliates data", body["error"])
		assert.Equal(t, "Failed to fetch affiliates data", body["message"])
	})
}

// ---- CORS ----

func TestCORS(t *testing.T) {
	e := newTestEnv(t, WithAllowedOrigins([]string{"https://luckyw.vercel.app/"}))

	resp, _ := e.do(t, http.MethodGet, "/health", "", map[string]string{"Origin": "https://luckyw.vercel.app"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://luckyw.vercel.app", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	resp, _ = e.do(t, http.MethodOptions, "/api/auth/login", "", map[string]string{
		"Origin":                        "https://luckyw.vercel.app",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	resp, _ = e.do(t, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

// ---- lifecycle ----

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", testLogger(), &fakeUsers{}, &fakeAffiliates{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewHTTPServer("256.0.0.1:-1", testLogger(), &fakeUsers{}, &fakeAffiliates{})
	assert.Error(t, s.Run(context.Background()))
}
