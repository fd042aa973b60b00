package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"botapi/pkg/token"

	"github.com/gin-gonic/gin"
)

func testConfig() *Config {
	return &Config{
		Env:         "local",
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		CORSOrigin:  "*",
		RateWindow:  15 * time.Minute,
		RateMax:     1000,
		AuthRateMax: 1000,
	}
}

// newTestServer builds a Server without a database; only routes that never
// reach the store may be exercised against it.
func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(testConfig(), nil, logger)
}

func performRequest(r http.Handler, method, path string, body io.Reader, bearer string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (body=%s)", err, rec.Body.String())
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestServer().Router()

	rec := performRequest(r, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status=%d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeEnvelope(t, rec)
	if out["success"] != true {
		t.Fatalf("expected success=true, got %v", out)
	}
	if _, ok := out["timestamp"].(string); !ok {
		t.Fatalf("expected timestamp string, got %v", out["timestamp"])
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	r := newTestServer().Router()

	for _, header := range []string{
		"",
		"Bearer",       // no space, no token
		"bearer x.y.z", // prefix is case-sensitive
		"Token x.y.z",
	} {
		rec := performRequest(r, http.MethodGet, "/api/bot-users", nil, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		out := decodeEnvelope(t, rec)
		if out["success"] != false {
			t.Fatalf("header %q: expected success=false, got %v", header, out)
		}
	}
}

func TestTokenSignedWithDifferentSecretIsRejected(t *testing.T) {
	r := newTestServer().Router()

	forged := token.NewCodec([]byte("some-other-secret"), time.Hour)
	tok, err := forged.Issue(1, "admin")
	if err != nil {
		t.Fatal(err)
	}

	rec := performRequest(r, http.MethodGet, "/api/bot-users", nil, "Bearer "+tok)
	if rec.Code == http.StatusOK {
		t.Fatal("token signed with a different secret must never be accepted")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	out := decodeEnvelope(t, rec)
	if out["message"] != "invalid token" {
		t.Fatalf("expected generic invalid-token message, got %v", out["message"])
	}
}

func TestExpiredTokenGetsItsOwnMessage(t *testing.T) {
	r := newTestServer().Router()

	backdated := token.NewCodec([]byte("test-secret"), -time.Hour)
	tok, err := backdated.Issue(1, "admin")
	if err != nil {
		t.Fatal(err)
	}

	rec := performRequest(r, http.MethodGet, "/api/bot-users", nil, "Bearer "+tok)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	out := decodeEnvelope(t, rec)
	if out["message"] != "token expired" {
		t.Fatalf("expected expired-token message, got %v", out["message"])
	}
}

func TestValidTokenPassesTheGate(t *testing.T) {
	srv := newTestServer()
	r := srv.Router()

	tok, err := srv.tokens.Issue(1, "admin")
	if err != nil {
		t.Fatal(err)
	}

	// A weak password is rejected by the handler before any store access, so
	// a 400 here proves the gate admitted the token.
	body := strings.NewReader(`{"username":"newuser","password":"short"}`)
	rec := performRequest(r, http.MethodPost, "/api/auth/register", body, "Bearer "+tok)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 weak password, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRouteAndWrongMethodBothReturn404(t *testing.T) {
	r := newTestServer().Router()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/"},
		{http.MethodDelete, "/api/health"},    // wrong method on a known path
		{http.MethodPut, "/api/auth/login"},   // wrong method on a known path
		{http.MethodPatch, "/api/bot-users"},  // method not registered
	} {
		rec := performRequest(r, tc.method, tc.path, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
		out := decodeEnvelope(t, rec)
		if out["success"] != false {
			t.Fatalf("%s %s: expected JSON 404 envelope, got %s", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	r := newTestServer().Router()

	for _, body := range []string{
		`{}`,
		`{"username":"admin"}`,
		`{"password":"secret"}`,
		`not json`,
	} {
		rec := performRequest(r, http.MethodPost, "/api/auth/login", strings.NewReader(body), "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}
