// Package service: user and authentication business logic.
//
//	UserHandler / LoginHandler (HTTP) → UserService → UserRepository (DB)
//	                                               ↘ PasswordService (bcrypt)
//	                                               ↘ TokenService (JWT)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// msgBadCredentials is returned for an unknown username and for a wrong
// password alike.
const msgBadCredentials = "invalid username or password"

// UserService handles registration, login and resolving a token to a user.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new user with an empty blog list.
//
// The password rules are checked before the username rules, and the hash is
// only computed once both pass. A taken username yields apperror.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := auth.CheckPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Name:     req.Name,
		Blogs:    []string{},
	}

	if err := validateStruct("User", user); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("service: creating user %q: %w", req.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// List returns every user with its blog list populated.
func (s *UserService) List(ctx context.Context) ([]model.PopulatedUser, error) {
	users, err := s.users.ListPopulatedUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing users: %w", err)
	}
	return users, nil
}

// Login checks a username/password pair and issues a token for it.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(msgBadCredentials)
		}
		return nil, fmt.Errorf("service: looking up %q: %w", req.Username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, apperror.Unauthorized(msgBadCredentials)
		}
		return nil, err
	}

	token, err := s.tokens.Generate(user.Username, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return &model.LoginResponse{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// UserFromToken validates a bearer token and loads the user it names.
//
// Every failure that is the token's fault comes back as ErrTokenInvalid or
// ErrTokenExpired, including a well-signed token whose user has since been
// removed.
func (s *UserService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	if err := checkID(claims.ID); err != nil {
		return nil, apperror.TokenInvalid()
	}

	user, err := s.users.GetUserByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.TokenInvalid()
		}
		return nil, fmt.Errorf("service: loading user %s: %w", claims.ID, err)
	}

	return user, nil
}
