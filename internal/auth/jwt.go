// Package auth provides bearer token issuing and verification, password
// hashing and the password policy for the bloglist API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers with POST /api/users (password policy + bcrypt)
// 2. User logs in with POST /api/login and receives a signed JWT
// 3. Client sends "Authorization: Bearer <token>" on protected calls
// 4. Middleware extracts the token, verifies it and loads the user into the
//    request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless: the server doesn't need to store session
// data. All the information needed (user id, username, expiry) is inside the
// signed token. The signature ensures nobody can tamper with it without the
// secret key. The flip side: there is no revocation, a token stays valid until
// it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/bloglist/internal/apperror"
)

const (
	issuer = "bloglist"

	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = time.Hour
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Claims is the JWT payload: the user's username and id on top of the
// registered claims (exp, iat, iss).
type Claims struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple, good for single-server deployments
func (s *TokenService) Generate(username, userID string) (string, error) {
	return s.GenerateWithDuration(username, userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(username, userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		ID:       userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// ERROR MAPPING:
//   - expired token                      → apperror.TokenExpired
//   - anything else (empty, bad signature,
//     wrong algorithm, no "id" claim)     → apperror.TokenInvalid
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. Passing jwt.WithValidMethods prevents this.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, apperror.TokenInvalid()
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.TokenExpired()
		}
		return nil, apperror.TokenInvalid()
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.TokenInvalid()
	}

	// A well-signed token that does not say who it belongs to is useless.
	if c.ID == "" {
		return nil, apperror.TokenInvalid()
	}

	return c, nil
}
