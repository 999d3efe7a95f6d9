package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

// TokenTypeBearer is the token_type returned with every access token.
const TokenTypeBearer = "bearer"

// Authenticate returns the stored user when password matches its digest.
// Unknown identifiers and wrong passwords both yield domain.ErrNotAuthenticated.
func (s *UserService) Authenticate(ctx context.Context, id, password string) (*domain.User, error) {
	if id == "" || password == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if s.dummyDigest != "" {
				s.hasher.Verify(password, s.dummyDigest)
			}
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

// IssueToken signs an access token for user and records the login.
func (s *UserService) IssueToken(ctx context.Context, user *domain.User) (*ports.TokenResult, error) {
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.repo.RecordLogin(ctx, user.ID, domain.FormatTime(s.now())); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("access token issued")
	s.publish(domain.EventLogin, user.ID, user.ID)

	return &ports.TokenResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// Principal validates token and loads the user it was issued to. A valid
// token whose subject no longer exists is treated as invalid.
func (s *UserService) Principal(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
