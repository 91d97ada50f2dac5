package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkup-app/linkup-api/pkg/auth"
	apperrors "github.com/linkup-app/linkup-api/pkg/errors"
	"github.com/linkup-app/linkup-api/pkg/logger"
	"github.com/linkup-app/linkup-api/pkg/security"

	"github.com/linkup-app/linkup-api/internal/email"
	"github.com/linkup-app/linkup-api/internal/model"
	"github.com/linkup-app/linkup-api/internal/repository"
)

const bcryptCost = 12

type Service struct {
	users   repository.UserRepository
	jwtSvc  auth.JWTService
	hasher  security.PasswordHasher
	emailer email.Service
	logger  *logger.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, emailer email.Service, log *logger.Logger) *Service {
	return &Service{
		users:   users,
		jwtSvc:  jwtSvc,
		hasher:  security.NewBcryptHasher(bcryptCost),
		emailer: emailer,
		logger:  log,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// Delivery failures must not fail registration.
	if err := s.emailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email", "user_id", user.ID)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	access, err := s.jwtSvc.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	userID, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	access, err := s.jwtSvc.GenerateAccessToken(userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
