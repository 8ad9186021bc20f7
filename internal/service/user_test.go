package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
)

const testSecret = "service-test-secret-0123456789"

func newTestUserService(t *testing.T) (*UserService, *fakeStore, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	store := newFakeStore()
	// Cost 4 is bcrypt's minimum and keeps the tests fast.
	svc := NewUserService(store, auth.NewPasswordService(4), tokens, testLogger())
	return svc, store, tokens
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	svc, store, _ := newTestUserService(t)

	user, err := svc.Register(context.Background(), model.CreateUserRequest{
		Username: "mluukkai",
		Name:     "Matti Luukkainen",
		Password: "Salainen1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "mluukkai", user.Username)
	assert.Equal(t, []string{}, user.Blogs)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2a$"), "hash = %q", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "Salainen1")
	assert.Len(t, store.users, 1)
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateUserRequest
		wantErr error
		wantMsg string
	}{
		{
			name:    "password too short",
			req:     model.CreateUserRequest{Username: "root", Password: "99"},
			wantErr: apperror.ErrValidation,
			wantMsg: auth.MsgPasswordTooShort,
		},
		{
			name:    "password without uppercase",
			req:     model.CreateUserRequest{Username: "root", Password: "720156"},
			wantErr: apperror.ErrValidation,
			wantMsg: auth.MsgPasswordTooWeak,
		},
		{
			name:    "missing username",
			req:     model.CreateUserRequest{Password: "A1b"},
			wantErr: apperror.ErrValidation,
			wantMsg: "User validation failed: username: Path `username` is required.",
		},
		{
			name:    "short username",
			req:     model.CreateUserRequest{Username: "ab", Password: "A1b"},
			wantErr: apperror.ErrValidation,
			wantMsg: "User validation failed: username: Path `username` (`ab`) is shorter than the minimum allowed length (3).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestUserService(t)

			_, err := svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Empty(t, store.users)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	req := model.CreateUserRequest{Username: "root", Password: "A1b"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, apperror.ErrDuplicate)
	assert.Equal(t, "expected `username` to be unique", err.Error())
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, _, tokens := newTestUserService(t)
	user, err := svc.Register(context.Background(), model.CreateUserRequest{
		Username: "root", Name: "Superuser", Password: "Sekret1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), model.LoginRequest{Username: "root", Password: "Sekret1"})
	require.NoError(t, err)

	assert.Equal(t, "root", resp.Username)
	assert.Equal(t, "Superuser", resp.Name)

	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, "root", claims.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	_, err := svc.Register(context.Background(), model.CreateUserRequest{Username: "root", Password: "Sekret1"})
	require.NoError(t, err)

	for _, req := range []model.LoginRequest{
		{Username: "root", Password: "wrong"},
		{Username: "nobody", Password: "Sekret1"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.ErrorIs(t, err, apperror.ErrUnauthorized, "login %q", req.Username)
		assert.Equal(t, "invalid username or password", err.Error())
	}
}

// =========================================================================
// TOKEN → USER TESTS
// =========================================================================

func TestUserFromToken(t *testing.T) {
	svc, store, tokens := newTestUserService(t)
	user := addUser(t, store, "root")

	good, _ := tokens.Generate("root", user.ID)
	expired, _ := tokens.GenerateWithDuration("root", user.ID, -time.Second)
	unknownUser, _ := tokens.Generate("ghost", xid.New().String())
	badID, _ := tokens.Generate("root", "not-an-xid")

	t.Run("valid", func(t *testing.T) {
		got, err := svc.UserFromToken(context.Background(), good)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"expired", expired, apperror.ErrTokenExpired},
		{"user no longer exists", unknownUser, apperror.ErrTokenInvalid},
		{"malformed id claim", badID, apperror.ErrTokenInvalid},
		{"garbage", "abc", apperror.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UserFromToken(context.Background(), tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UserFromToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
