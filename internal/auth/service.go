package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users  users.Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(userRepo users.Repository, tokens *TokenStore) *Service {
	return &Service{users: userRepo, tokens: tokens}
}

// Authenticate validates email/password credentials and issues a token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// ResolveCaller turns a bearer token into a caller identity.
func (s *Service) ResolveCaller(ctx context.Context, token string) (*shared.Caller, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &shared.Caller{
		UserID:  user.ID,
		Name:    user.Name,
		Company: user.CompanyName,
		Admin:   user.IsAdmin(),
	}, nil
}
