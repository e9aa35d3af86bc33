package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Meta  MetaData      `json:"meta"`
}

// UserStats is the admin dashboard summary: totals per role plus signup
// counts for the trailing 30 days and the current calendar month.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	CustomerCount int64 `json:"customerCount"`
	StaffCount    int64 `json:"staffCount"`
	AdminCount    int64 `json:"adminCount"`
	RecentUsers   int64 `json:"recentUsers"`
	MonthlyUsers  int64 `json:"monthlyUsers"`
}

// UserService covers staff-account administration: listing, search,
// role changes, deactivation. Self-service registration lives in
// AuthService.
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context, role, search string, page, limit int) (*UserListResponse, *ServiceError) {
	if role != "" && !models.IsValidUserRole(role) {
		return nil, errBadRequest("Invalid role filter")
	}
	return s.list(ctx, repository.UserFilter{Role: role, Search: strings.TrimSpace(search)}, page, limit)
}

// SearchUsers is ListUsers with a mandatory query.
func (s *UserService) SearchUsers(ctx context.Context, query, role string, page, limit int) (*UserListResponse, *ServiceError) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, errBadRequest("Search query must be at least 2 characters long")
	}
	if role != "" && !models.IsValidUserRole(role) {
		return nil, errBadRequest("Invalid role filter")
	}
	return s.list(ctx, repository.UserFilter{Role: role, Search: query}, page, limit)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("User not found")
		}
		s.logger.Error("Failed to fetch user", zap.Error(err))
		return nil, errInternal("Failed to fetch user")
	}
	return user, nil
}

// UpdateProfile lets a user change their own name and email. Both fields
// are optional; omitted fields are left alone.
func (s *UserService) UpdateProfile(ctx context.Context, identity *Identity, req *UpdateProfileRequest) (*models.User, *ServiceError) {
	if identity == nil {
		return nil, errUnauthorized("Authentication required")
	}

	user, serviceErr := s.GetUser(ctx, identity.UserID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) < 2 || len(name) > 50 || !namePattern.MatchString(name) {
			return nil, errBadRequest("Name must be 2-50 characters of letters, numbers, spaces, hyphens, and apostrophes")
		}
		user.Name = name
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if !emailPattern.MatchString(email) {
			return nil, errBadRequest("Please provide a valid email address")
		}
		if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, errBadRequest("Email is already in use by another user")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Failed to check email", zap.Error(err))
			return nil, errInternal("Failed to update profile")
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errBadRequest("Email is already in use by another user")
		}
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, errInternal("Failed to update profile")
	}
	return user, nil
}

// UpdateRole changes another user's role. Admins cannot change their own
// role, which would otherwise let the last admin lock everyone out.
func (s *UserService) UpdateRole(ctx context.Context, identity *Identity, id uuid.UUID, role string) (*models.User, *ServiceError) {
	if !models.IsValidUserRole(role) {
		return nil, errBadRequest("Invalid role. Must be one of: customer, staff, admin")
	}

	user, serviceErr := s.GetUser(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if identity != nil && identity.UserID == id {
		return nil, errBadRequest("You cannot change your own role")
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user role", zap.Error(err))
		return nil, errInternal("Failed to update user role")
	}
	return user, nil
}

// DeactivateUser removes an account. Self-deactivation is rejected for
// the same reason self role changes are.
func (s *UserService) DeactivateUser(ctx context.Context, identity *Identity, id uuid.UUID) *ServiceError {
	if _, serviceErr := s.GetUser(ctx, id); serviceErr != nil {
		return serviceErr
	}

	if identity != nil && identity.UserID == id {
		return errBadRequest("You cannot deactivate your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Error(err))
		return errInternal("Failed to deactivate user")
	}
	return nil
}

func (s *UserService) Stats(ctx context.Context) (*UserStats, *ServiceError) {
	counts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, errInternal("Failed to retrieve user statistics")
	}

	now := time.Now()
	recent, err := s.userRepo.CountCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		s.logger.Error("Failed to count recent users", zap.Error(err))
		return nil, errInternal("Failed to retrieve user statistics")
	}

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.userRepo.CountCreatedSince(ctx, startOfMonth)
	if err != nil {
		s.logger.Error("Failed to count monthly users", zap.Error(err))
		return nil, errInternal("Failed to retrieve user statistics")
	}

	stats := &UserStats{
		CustomerCount: counts[models.RoleCustomer],
		StaffCount:    counts[models.RoleStaff],
		AdminCount:    counts[models.RoleAdmin],
		RecentUsers:   recent,
		MonthlyUsers:  monthly,
	}
	for _, count := range counts {
		stats.TotalUsers += count
	}
	return stats, nil
}

func (s *UserService) list(ctx context.Context, filter repository.UserFilter, page, limit int) (*UserListResponse, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	users, total, err := s.userRepo.List(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch users", zap.Error(err))
		return nil, errInternal("Failed to retrieve users")
	}

	return &UserListResponse{
		Users: users,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}
