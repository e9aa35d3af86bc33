package repository

import (
	"context"

	"qr-restaurant-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItemFilter narrows menu listings. Search matches name and
// description case-insensitively.
type MenuItemFilter struct {
	CategoryID   *uuid.UUID
	Availability *bool
	Search       string
}

type MenuRepository interface {
	CreateCategory(ctx context.Context, category *models.MenuCategory) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.MenuCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, error)
	UpdateCategory(ctx context.Context, category *models.MenuCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateItem(ctx context.Context, item *models.MenuItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListItems(ctx context.Context, filter MenuItemFilter, page, limit int) ([]models.MenuItem, int64, error)
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type GormMenuRepository struct {
	db *gorm.DB
}

func NewGormMenuRepository(db *gorm.DB) MenuRepository {
	return &GormMenuRepository{db: db}
}

func (r *GormMenuRepository) CreateCategory(ctx context.Context, category *models.MenuCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *GormMenuRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormMenuRepository) ListCategories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuCategory{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var categories []models.MenuCategory
	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormMenuRepository) UpdateCategory(ctx context.Context, category *models.MenuCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *GormMenuRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MenuCategory{}, "id = ?", id).Error
}

func (r *GormMenuRepository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormMenuRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormMenuRepository) ListItems(ctx context.Context, filter MenuItemFilter, page, limit int) ([]models.MenuItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Availability != nil {
		query = query.Where("availability = ?", *filter.Availability)
	}
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var items []models.MenuItem
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *GormMenuRepository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormMenuRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id).Error
}
