package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/auth"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, logger: logger}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.UserID))
	return s.signIn(user)
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.signIn(user)
}

func (s *AuthService) Me(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn("Bootstrap admin email belongs to a non-admin user", zap.String("email", existing.Email))
		}
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	user, err := s.createUser(ctx, "Administrator", email, password, domain.RoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("Bootstrap admin created", zap.String("user_id", user.UserID))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        normalizeEmail(email),
		UserID:       uuid.NewString(),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) signIn(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.tokens.Issue(user.UserID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Token: token, User: *user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
