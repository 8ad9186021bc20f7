package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
)

// stubResolver accepts exactly one token.
type stubResolver struct {
	token string
	user  *model.User
	err   error
}

func (s stubResolver) UserFromToken(_ context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, apperror.TokenInvalid()
	}
	return s.user, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

// =========================================================================
// TOKEN EXTRACTOR
// =========================================================================

func TestTokenExtractor(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"no header", "", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"basic auth", "Basic dXNlcjpwYXNz", "", false},
		{"bearer without token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			var gotOK bool
			h := TokenExtractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken, gotOK = auth.TokenFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, "extractor must never reject")
			assert.Equal(t, tt.wantOK, gotOK)
			assert.Equal(t, tt.wantToken, gotToken)
		})
	}
}

// =========================================================================
// USER EXTRACTOR
// =========================================================================

func TestUserExtractor(t *testing.T) {
	root := &model.User{ID: "cv37rs3pp9olc6atsptg", Username: "root"}
	chain := func(resolver UserResolver, next http.Handler) http.Handler {
		return TokenExtractor(UserExtractor(resolver, quietLogger())(next))
	}

	t.Run("valid token puts user in context", func(t *testing.T) {
		var got *model.User
		h := chain(stubResolver{token: "good", user: root}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = auth.UserFromContext(r.Context())
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "root", got.Username)
	})

	tests := []struct {
		name     string
		header   string
		resolver stubResolver
		wantMsg  string
	}{
		{"missing token", "", stubResolver{token: "good", user: root}, "token invalid"},
		{"wrong token", "Bearer bad", stubResolver{token: "good", user: root}, "token invalid"},
		{"expired token", "Bearer good", stubResolver{err: apperror.TokenExpired()}, "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := chain(tt.resolver, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, called, "handler must not run")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantMsg, errorBody(t, rec))
		})
	}
}

// =========================================================================
// VALIDATE USER
// =========================================================================

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"valid password", `{"username":"root","password":"A1b"}`, http.StatusOK, ""},
		{"missing password", `{"username":"root"}`, http.StatusBadRequest, auth.MsgPasswordTooShort},
		{"empty body", ``, http.StatusBadRequest, auth.MsgPasswordTooShort},
		{"too short", `{"username":"root","password":"99"}`, http.StatusBadRequest, auth.MsgPasswordTooShort},
		{"digits only", `{"username":"root","password":"720156"}`, http.StatusBadRequest, auth.MsgPasswordTooWeak},
		{"no digit", `{"username":"root","password":"Secret"}`, http.StatusBadRequest, auth.MsgPasswordTooWeak},
		{"broken json", `{"password":`, http.StatusBadRequest, "malformatted JSON body"},
		{"trailing data", `{"password":"A1b"} {}`, http.StatusBadRequest, "malformatted JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := ValidateUser(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.body, seen, "handler must see the original body")
				return
			}
			assert.Equal(t, tt.wantMsg, errorBody(t, rec))
		})
	}
}

func TestAuthMiddleware_LogsThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	TokenExtractor(UserExtractor(stubResolver{token: "good"}, logger)(next)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/blogs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	ValidateUser(logger)(next).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"password":"99"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "path=/api/blogs")
	assert.Contains(t, out, "path=/api/users")
	assert.Equal(t, 2, strings.Count(out, "request rejected"))
}

func TestAuthMiddleware_SilentBelowLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	rec := httptest.NewRecorder()
	TokenExtractor(UserExtractor(stubResolver{token: "good"}, logger)(http.NotFoundHandler())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/blogs", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, buf.String())
}
