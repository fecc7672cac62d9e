package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
	"github.com/clientlane/crm-server-go/internal/util"
)

const minAccountPasswordLength = 8

// UserService handles platform account signup and password authentication.
// Token issuance lives with the HTTP layer; this service only proves who
// the caller is.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.InvalidInput("email", "must be a valid email address")
	}
	if len(password) < minAccountPasswordLength {
		return nil, apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.MissingRequired("name")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Account")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password").WithCause(err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("userId", user.ID).Msg("user account created")
	return user, nil
}

// Authenticate verifies email+password. The same UNAUTHORIZED comes back
// for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return user, nil
}
