package services

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter, page, limit int) ([]models.User, int64, error) {
	var matched []models.User
	for _, user := range f.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, user := range f.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (f *fakeUserRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, user := range f.users {
		if !user.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func newAuthService(repo *fakeUserRepo) *AuthService {
	tokens := NewTokenService("access-secret", "refresh-secret")
	return NewAuthService(repo, tokens, zap.NewNop())
}

func validRegistration() *RegisterRequest {
	return &RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "Str0ng!pass",
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	resp, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	assert.Equal(t, "ada@example.com", resp.User.Email, "email is normalized to lowercase")
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	stored := repo.users[resp.User.ID]
	assert.NotEqual(t, "Str0ng!pass", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	_, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	_, serviceErr = service.Register(context.Background(), validRegistration())
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusConflict, serviceErr.StatusCode)
	assert.Equal(t, "Email already registered", serviceErr.Message)
}

func TestRegisterValidation(t *testing.T) {
	service := newAuthService(newFakeUserRepo())

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }},
		{"name with symbols", func(r *RegisterRequest) { r.Name = "<script>" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"weak password", func(r *RegisterRequest) { r.Password = "password" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(req)

			_, serviceErr := service.Register(context.Background(), req)
			require.NotNil(t, serviceErr)
			assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
		})
	}
}

func TestRegisterIgnoresUnknownRole(t *testing.T) {
	service := newAuthService(newFakeUserRepo())

	req := validRegistration()
	req.Role = "superuser"

	resp, serviceErr := service.Register(context.Background(), req)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	_, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	resp, serviceErr := service.Login(context.Background(), &LoginRequest{
		Email:    "ada@example.com",
		Password: "Str0ng!pass",
	})
	require.Nil(t, serviceErr)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestLoginBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	_, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	// unknown email and wrong password are indistinguishable to the caller
	for _, req := range []*LoginRequest{
		{Email: "nobody@example.com", Password: "Str0ng!pass"},
		{Email: "ada@example.com", Password: "wrong-password"},
	} {
		_, serviceErr := service.Login(context.Background(), req)
		require.NotNil(t, serviceErr)
		assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)
		assert.Equal(t, "Invalid credentials", serviceErr.Message)
	}
}

func TestRefresh(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	registered, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	resp, serviceErr := service.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.Nil(t, serviceErr)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	// an access token is not a refresh token
	_, serviceErr = service.Refresh(context.Background(), registered.Tokens.AccessToken)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)
}

func TestMe(t *testing.T) {
	repo := newFakeUserRepo()
	service := newAuthService(repo)

	registered, serviceErr := service.Register(context.Background(), validRegistration())
	require.Nil(t, serviceErr)

	user, serviceErr := service.Me(context.Background(), &Identity{UserID: registered.User.ID, Role: registered.User.Role})
	require.Nil(t, serviceErr)
	assert.Equal(t, registered.User.Email, user.Email)

	_, serviceErr = service.Me(context.Background(), nil)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)
}
