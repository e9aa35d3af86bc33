package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-']+$`)
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User   *models.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	passwords *PasswordValidator
	logger    *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		passwords: NewPasswordValidator(),
		logger:    logger,
	}
}

// Register creates an account. Role is honored only for the known set and
// defaults to customer; staff/admin provisioning normally goes through an
// admin seeding flow rather than self-registration.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 || !namePattern.MatchString(name) {
		return nil, errBadRequest("Name must be 2-50 characters of letters, numbers, spaces, hyphens, and apostrophes")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, errBadRequest("Please provide a valid email address")
	}

	if err := s.passwords.Validate(req.Password); err != nil {
		return nil, errBadRequest(err.Error())
	}

	role := req.Role
	if !models.IsValidUserRole(role) {
		role = models.RoleCustomer
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, errInternal("Failed to register user")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Email already registered"}
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, errInternal("Failed to register user")
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Role)
	if err != nil {
		s.logger.Error("Failed to issue tokens", zap.Error(err))
		return nil, errInternal("Failed to register user")
	}

	return &AuthResponse{User: user, Tokens: pair}, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password produce the same message.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Failed to fetch user", zap.Error(err))
			return nil, errInternal("Failed to sign in")
		}
		return nil, errUnauthorized("Invalid credentials")
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, errUnauthorized("Invalid credentials")
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Role)
	if err != nil {
		s.logger.Error("Failed to issue tokens", zap.Error(err))
		return nil, errInternal("Failed to sign in")
	}

	return &AuthResponse{User: user, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// re-read so a role change takes effect on the next rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, *ServiceError) {
	identity, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, errUnauthorized("Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnauthorized("Invalid refresh token")
		}
		s.logger.Error("Failed to fetch user", zap.Error(err))
		return nil, errInternal("Failed to refresh tokens")
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Role)
	if err != nil {
		s.logger.Error("Failed to issue tokens", zap.Error(err))
		return nil, errInternal("Failed to refresh tokens")
	}

	return &AuthResponse{User: user, Tokens: pair}, nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, identity *Identity) (*models.User, *ServiceError) {
	if identity == nil {
		return nil, errUnauthorized("Authentication required")
	}

	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("User not found")
		}
		s.logger.Error("Failed to fetch user", zap.Error(err))
		return nil, errInternal("Failed to fetch profile")
	}
	return user, nil
}
