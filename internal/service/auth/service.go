package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	"github.com/jwalitptl/patient-api/pkg/auth"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

type Service struct {
	userRepo repository.UserRepository
	tokens   auth.TokenService
}

func NewService(userRepo repository.UserRepository, tokens auth.TokenService) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login verifies the credentials and issues an access token carrying the
// user's email as subject and their role claim.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}

	token, err := s.tokens.Generate(user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{Token: token}, nil
}

// ValidateToken checks signature and expiry. There is no refresh path;
// expired tokens require a fresh login.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}

	return &model.TokenClaims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
