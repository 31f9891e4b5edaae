package service

import (
	"context"
	"errors"
	"strings"

	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService maps requests to directory users. There is no login: a request
// without a token acts as the default user, and a bearer token only selects
// another known user.
type AuthService struct {
	cfg           config.JWTConfig
	users         directory.UserDirectory
	defaultUserID string
}

func NewAuthService(cfg config.JWTConfig, users directory.UserDirectory, defaultUserID string) *AuthService {
	return &AuthService{cfg: cfg, users: users, defaultUserID: defaultUserID}
}

// ResolveUser returns the user id a request acts as
func (s *AuthService) ResolveUser(ctx context.Context, authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return s.defaultUserID, nil
	}

	token, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	claims, err := jwt.ValidateToken(s.cfg, token)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	return user.ID, nil
}

// IssueToken signs a token for a directory user
func (s *AuthService) IssueToken(ctx context.Context, userID string) (*model.TokenResponse, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	token, err := jwt.GenerateToken(s.cfg, user.ID)
	if err != nil {
		return nil, err
	}

	info := user.Info()
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        &info,
	}, nil
}
