package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeMenuRepo struct {
	categories map[uuid.UUID]*models.MenuCategory
	items      map[uuid.UUID]*models.MenuItem
	listCalls  int
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{
		categories: make(map[uuid.UUID]*models.MenuCategory),
		items:      make(map[uuid.UUID]*models.MenuItem),
	}
}

func (f *fakeMenuRepo) CreateCategory(_ context.Context, category *models.MenuCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeMenuRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.MenuCategory, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *category
	return &clone, nil
}

func (f *fakeMenuRepo) ListCategories(_ context.Context, activeOnly bool) ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	for _, category := range f.categories {
		if activeOnly && !category.Active {
			continue
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func (f *fakeMenuRepo) UpdateCategory(_ context.Context, category *models.MenuCategory) error {
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeMenuRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeMenuRepo) CreateItem(_ context.Context, item *models.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeMenuRepo) FindItemByID(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeMenuRepo) ListItems(_ context.Context, filter repository.MenuItemFilter, page, limit int) ([]models.MenuItem, int64, error) {
	f.listCalls++
	var matched []models.MenuItem
	for _, item := range f.items {
		if filter.CategoryID != nil && item.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Availability != nil && item.Availability != *filter.Availability {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *item)
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeMenuRepo) UpdateItem(_ context.Context, item *models.MenuItem) error {
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeMenuRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func newMenuService(repo *fakeMenuRepo) *MenuService {
	return NewMenuService(repo, nil, nil, zap.NewNop())
}

func seedCategory(t *testing.T, repo *fakeMenuRepo) uuid.UUID {
	t.Helper()
	category := &models.MenuCategory{Name: "Mains", Active: true}
	require.NoError(t, repo.CreateCategory(context.Background(), category))
	return category.ID
}

func validItemRequest(categoryID uuid.UUID) *MenuItemUpsertRequest {
	return &MenuItemUpsertRequest{
		Name:       "Margherita",
		Price:      8.50,
		CategoryID: categoryID.String(),
		Tags:       []string{"vegetarian"},
	}
}

func TestCreateItem(t *testing.T) {
	repo := newFakeMenuRepo()
	service := newMenuService(repo)
	categoryID := seedCategory(t, repo)

	item, serviceErr := service.CreateItem(context.Background(), validItemRequest(categoryID))
	require.Nil(t, serviceErr)

	assert.Equal(t, int64(850), item.PriceCents)
	assert.InDelta(t, 8.50, item.Price, 0.0001)
	assert.True(t, item.Availability)
}

func TestCreateItemValidation(t *testing.T) {
	repo := newFakeMenuRepo()
	service := newMenuService(repo)
	categoryID := seedCategory(t, repo)

	tests := []struct {
		name   string
		mutate func(*MenuItemUpsertRequest)
	}{
		{"short name", func(r *MenuItemUpsertRequest) { r.Name = "X" }},
		{"zero price", func(r *MenuItemUpsertRequest) { r.Price = 0 }},
		{"negative price", func(r *MenuItemUpsertRequest) { r.Price = -3 }},
		{"absurd price", func(r *MenuItemUpsertRequest) { r.Price = 1000000 }},
		{"bad category id", func(r *MenuItemUpsertRequest) { r.CategoryID = "mains" }},
		{"too many tags", func(r *MenuItemUpsertRequest) { r.Tags = make([]string, 11) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validItemRequest(categoryID)
			tc.mutate(req)

			_, serviceErr := service.CreateItem(context.Background(), req)
			require.NotNil(t, serviceErr)
			assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
		})
	}
}

func TestCreateItemUnknownCategory(t *testing.T) {
	service := newMenuService(newFakeMenuRepo())

	_, serviceErr := service.CreateItem(context.Background(), validItemRequest(uuid.New()))
	require.NotNil(t, serviceErr)
	assert.Equal(t, "Unknown category", serviceErr.Message)
}

func TestListItemsPagination(t *testing.T) {
	repo := newFakeMenuRepo()
	service := newMenuService(repo)
	categoryID := seedCategory(t, repo)

	for i := 0; i < 25; i++ {
		req := validItemRequest(categoryID)
		req.Name = "Item " + strings.Repeat("x", i+1)
		_, serviceErr := service.CreateItem(context.Background(), req)
		require.Nil(t, serviceErr)
	}

	resp, serviceErr := service.ListItems(context.Background(), repository.MenuItemFilter{}, 1, 10)
	require.Nil(t, serviceErr)
	assert.Len(t, resp.Items, 10)
	assert.Equal(t, int64(25), resp.Meta.TotalItems)
	assert.Equal(t, int64(3), resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasMore)

	resp, serviceErr = service.ListItems(context.Background(), repository.MenuItemFilter{}, 3, 10)
	require.Nil(t, serviceErr)
	assert.Len(t, resp.Items, 5)
	assert.False(t, resp.Meta.HasMore)

	// out-of-range inputs are clamped, not rejected
	resp, serviceErr = service.ListItems(context.Background(), repository.MenuItemFilter{}, 0, 500)
	require.Nil(t, serviceErr)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 100, resp.Meta.Limit)
}

func TestSetItemAvailability(t *testing.T) {
	repo := newFakeMenuRepo()
	service := newMenuService(repo)
	categoryID := seedCategory(t, repo)

	item, serviceErr := service.CreateItem(context.Background(), validItemRequest(categoryID))
	require.Nil(t, serviceErr)

	updated, serviceErr := service.SetItemAvailability(context.Background(), item.ID, false)
	require.Nil(t, serviceErr)
	assert.False(t, updated.Availability)
	assert.False(t, repo.items[item.ID].Availability)
}

func TestPresignWithoutStorageConfigured(t *testing.T) {
	repo := newFakeMenuRepo()
	service := newMenuService(repo)
	categoryID := seedCategory(t, repo)

	item, serviceErr := service.CreateItem(context.Background(), validItemRequest(categoryID))
	require.Nil(t, serviceErr)

	_, serviceErr = service.PresignItemImageUpload(context.Background(), item.ID, "pizza.jpg", "image/jpeg")
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusServiceUnavailable, serviceErr.StatusCode)
}

func TestPresignRejectsBadContentType(t *testing.T) {
	repo := newFakeMenuRepo()
	service := NewMenuService(repo, nil, &S3Presigner{}, zap.NewNop())
	categoryID := seedCategory(t, repo)

	item, serviceErr := service.CreateItem(context.Background(), validItemRequest(categoryID))
	require.Nil(t, serviceErr)

	_, serviceErr = service.PresignItemImageUpload(context.Background(), item.ID, "pizza.gif", "image/gif")
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
}
