package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/respond"
)

const bearerPrefix = "Bearer "

// UserResolver turns a raw bearer token into the user it names.
// *service.UserService satisfies it.
type UserResolver interface {
	UserFromToken(ctx context.Context, token string) (*model.User, error)
}

// TokenExtractor copies the bearer token from the Authorization header into
// the request context. It never rejects a request: routes that need a user
// sit behind UserExtractor as well.
//
// The prefix match is case-sensitive; "bearer abc" carries no token.
func TokenExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, bearerPrefix); ok {
			r = r.WithContext(auth.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// UserExtractor resolves the token stored by TokenExtractor and puts the
// user in the context. Missing, invalid or expired tokens stop the request
// with a 401, logged through logger.
func UserExtractor(users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromContext(r.Context())
			if !ok {
				respond.Error(logger, w, r, apperror.TokenInvalid())
				return
			}

			user, err := users.UserFromToken(r.Context(), token)
			if err != nil {
				respond.Error(logger, w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// ValidateUser enforces the password policy on a registration body before
// the handler sees it. The body is read once and put back, so the handler
// decodes it again as if nothing happened.
func ValidateUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				respond.Error(logger, w, r, apperror.ValidationFailed("body", "malformatted JSON body"))
				return
			}

			var body struct {
				Password string `json:"password"`
			}
			if len(bytes.TrimSpace(raw)) > 0 {
				if err := json.Unmarshal(raw, &body); err != nil {
					respond.Error(logger, w, r, apperror.ValidationFailed("body", "malformatted JSON body"))
					return
				}
			}

			if err := auth.CheckPasswordPolicy(body.Password); err != nil {
				respond.Error(logger, w, r, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
		})
	}
}
