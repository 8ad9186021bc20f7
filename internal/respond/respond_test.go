package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloglist/internal/apperror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperror.ValidationFailed("url", "Blog validation failed: url: Path `url` is required."),
			http.StatusBadRequest, "Blog validation failed: url: Path `url` is required."},
		{"malformed id", apperror.MalformedID(), http.StatusBadRequest, "malformatted id"},
		{"duplicate", apperror.Duplicate("username"), http.StatusBadRequest, "expected `username` to be unique"},
		{"token invalid", apperror.TokenInvalid(), http.StatusUnauthorized, "token invalid"},
		{"token expired", apperror.TokenExpired(), http.StatusUnauthorized, "token expired"},
		{"bad credentials", apperror.Unauthorized("invalid username or password"),
			http.StatusUnauthorized, "invalid username or password"},
		{"forbidden", apperror.Forbidden("you cannot delete this blog"),
			http.StatusForbidden, "you cannot delete this blog"},
		{"not found", apperror.NotFound("blog not found"), http.StatusNotFound, "blog not found"},
		{"wrapped", fmt.Errorf("service: deleting blog: %w", apperror.NotFound("blog not found")),
			http.StatusNotFound, "blog not found"},
		{"unknown", errors.New("sqlite: disk I/O error"), http.StatusInternalServerError, MsgInternal},
		{"bare sentinel", apperror.ErrNotFound, http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Translate(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestError_WritesJSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/blogs/x", nil)

	Error(discardLogger(), rec, req, apperror.Forbidden("you cannot delete this blog"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{"error": "you cannot delete this blog"}, body)
}

func TestError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)

	Error(discardLogger(), rec, req, errors.New("sqlite: no such table: blogs"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sqlite")
}

func TestError_LogsThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
	Error(logger, httptest.NewRecorder(), req, apperror.TokenInvalid())

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "request rejected")
	assert.Contains(t, out, "status=401")
	assert.Contains(t, out, "path=/api/blogs")
}

func TestError_RespectsLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
	Error(logger, httptest.NewRecorder(), req, apperror.ValidationFailed("url", "Blog validation failed"))
	assert.Empty(t, buf.String(), "4xx rejections are INFO and must be filtered at LevelError")

	Error(logger, httptest.NewRecorder(), req, errors.New("sqlite: disk I/O error"))
	assert.Contains(t, buf.String(), "request failed")
}

func TestJSON_NilDataWritesNoBody(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(discardLogger(), rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Likes *int   `json:"likes"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"t","likes":3}`))
		var p payload
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
		assert.Equal(t, "t", p.Title)
		require.NotNil(t, p.Likes)
		assert.Equal(t, 3, *p.Likes)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
		assert.Nil(t, p.Likes)
	})

	t.Run("trailing whitespace", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"title\":\"t\"}\n\t "))
		var p payload
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &p))
		assert.Equal(t, "t", p.Title)
	})

	for name, body := range map[string]string{
		"syntax error":     `{"title":`,
		"wrong type":       `{"likes":"many"}`,
		"trailing garbage": `{"title":"t"}x`,
		"second value":     `{"title":"t"} {"title":"u"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}
