package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
	Active       *bool  `json:"active"`
}

type MenuItemUpsertRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	CategoryID   string   `json:"categoryId"`
	Availability *bool    `json:"availability"`
	Tags         []string `json:"tags"`
	ImageURL     string   `json:"imageUrl"`
}

type MenuItemListResponse struct {
	Items []models.MenuItem `json:"items"`
	Meta  MetaData          `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type MenuService struct {
	menuRepo  repository.MenuRepository
	cache     *MenuCache
	presigner *S3Presigner // nil when no bucket is configured
	logger    *zap.Logger
}

func NewMenuService(menuRepo repository.MenuRepository, cache *MenuCache, presigner *S3Presigner, logger *zap.Logger) *MenuService {
	return &MenuService{
		menuRepo:  menuRepo,
		cache:     cache,
		presigner: presigner,
		logger:    logger,
	}
}

func (s *MenuService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.MenuCategory, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 100 {
		return nil, errBadRequest("Category name must be between 2 and 100 characters")
	}

	category := &models.MenuCategory{
		Name:         name,
		DisplayOrder: req.DisplayOrder,
		Active:       true,
	}
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.menuRepo.CreateCategory(ctx, category); err != nil {
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, errInternal("Failed to create category")
	}

	s.cache.Invalidate(ctx)
	return category, nil
}

func (s *MenuService) ListCategories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, *ServiceError) {
	categories, err := s.menuRepo.ListCategories(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Failed to fetch categories", zap.Error(err))
		return nil, errInternal("Failed to retrieve categories")
	}
	return categories, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.MenuCategory, *ServiceError) {
	category, err := s.menuRepo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Category not found")
		}
		s.logger.Error("Failed to fetch category", zap.Error(err))
		return nil, errInternal("Failed to fetch category")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) < 2 || len(name) > 100 {
			return nil, errBadRequest("Category name must be between 2 and 100 characters")
		}
		category.Name = name
	}
	category.DisplayOrder = req.DisplayOrder
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.menuRepo.UpdateCategory(ctx, category); err != nil {
		s.logger.Error("Failed to update category", zap.Error(err))
		return nil, errInternal("Failed to update category")
	}

	s.cache.Invalidate(ctx)
	return category, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError {
	if _, err := s.menuRepo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("Category not found")
		}
		s.logger.Error("Failed to fetch category", zap.Error(err))
		return errInternal("Failed to fetch category")
	}

	if err := s.menuRepo.DeleteCategory(ctx, id); err != nil {
		s.logger.Error("Failed to delete category", zap.Error(err))
		return errInternal("Failed to delete category")
	}

	s.cache.Invalidate(ctx)
	return nil
}

func (s *MenuService) CreateItem(ctx context.Context, req *MenuItemUpsertRequest) (*models.MenuItem, *ServiceError) {
	item, serviceErr := s.validateItem(req)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if _, err := s.menuRepo.FindCategoryByID(ctx, item.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadRequest("Unknown category")
		}
		s.logger.Error("Failed to fetch category", zap.Error(err))
		return nil, errInternal("Failed to create menu item")
	}

	if err := s.menuRepo.CreateItem(ctx, item); err != nil {
		s.logger.Error("Failed to create menu item", zap.Error(err))
		return nil, errInternal("Failed to create menu item")
	}

	item.Price = float64(item.PriceCents) / 100
	s.cache.Invalidate(ctx)
	return item, nil
}

// ListItems serves the public menu. Results are cached per filter
// combination; any menu write invalidates every cached page at once.
func (s *MenuService) ListItems(ctx context.Context, filter repository.MenuItemFilter, page, limit int) (*MenuItemListResponse, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	cacheKey := listCacheKey(filter, page, limit)
	if cached, ok := s.cache.GetItemList(ctx, cacheKey); ok {
		return cached, nil
	}

	items, total, err := s.menuRepo.ListItems(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch menu items", zap.Error(err))
		return nil, errInternal("Failed to retrieve menu items")
	}

	response := &MenuItemListResponse{
		Items: items,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}
	s.cache.SetItemListAsync(cacheKey, response)
	return response, nil
}

func (s *MenuService) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, *ServiceError) {
	item, err := s.menuRepo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Menu item not found")
		}
		s.logger.Error("Failed to fetch menu item", zap.Error(err))
		return nil, errInternal("Failed to fetch menu item")
	}
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id uuid.UUID, req *MenuItemUpsertRequest) (*models.MenuItem, *ServiceError) {
	existing, serviceErr := s.GetItem(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}

	updated, serviceErr := s.validateItem(req)
	if serviceErr != nil {
		return nil, serviceErr
	}

	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.PriceCents = updated.PriceCents
	existing.CategoryID = updated.CategoryID
	existing.Availability = updated.Availability
	existing.Tags = updated.Tags
	if updated.ImageURL != "" {
		existing.ImageURL = updated.ImageURL
	}

	if err := s.menuRepo.UpdateItem(ctx, existing); err != nil {
		s.logger.Error("Failed to update menu item", zap.Error(err))
		return nil, errInternal("Failed to update menu item")
	}

	existing.Price = float64(existing.PriceCents) / 100
	s.cache.Invalidate(ctx)
	return existing, nil
}

func (s *MenuService) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, *ServiceError) {
	item, serviceErr := s.GetItem(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}

	item.Availability = available
	if err := s.menuRepo.UpdateItem(ctx, item); err != nil {
		s.logger.Error("Failed to update menu item availability", zap.Error(err))
		return nil, errInternal("Failed to update menu item")
	}

	s.cache.Invalidate(ctx)
	return item, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id uuid.UUID) *ServiceError {
	if _, serviceErr := s.GetItem(ctx, id); serviceErr != nil {
		return serviceErr
	}

	if err := s.menuRepo.DeleteItem(ctx, id); err != nil {
		s.logger.Error("Failed to delete menu item", zap.Error(err))
		return errInternal("Failed to delete menu item")
	}

	s.cache.Invalidate(ctx)
	return nil
}

// PresignItemImageUpload returns a presigned PUT URL for a menu item
// image. Requires object storage to be configured.
func (s *MenuService) PresignItemImageUpload(ctx context.Context, id uuid.UUID, filename, contentType string) (*PresignedUpload, *ServiceError) {
	if s.presigner == nil {
		return nil, &ServiceError{StatusCode: 503, Message: "Image uploads are not configured"}
	}

	if !isAllowedImageContentType(contentType) {
		return nil, errBadRequest("Invalid content type. Allowed: image/jpeg, image/png, image/webp")
	}

	if _, serviceErr := s.GetItem(ctx, id); serviceErr != nil {
		return nil, serviceErr
	}

	upload, err := s.presigner.PresignItemImage(ctx, id.String(), filename, contentType)
	if err != nil {
		s.logger.Error("Failed to generate presigned upload", zap.Error(err))
		return nil, errInternal("Failed to generate upload URL")
	}
	return upload, nil
}

func (s *MenuService) validateItem(req *MenuItemUpsertRequest) (*models.MenuItem, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 100 {
		return nil, errBadRequest("Menu item name must be between 2 and 100 characters")
	}

	priceCents := int64(math.Round(req.Price * 100))
	if req.Price <= 0 || priceCents < 1 || req.Price > 999999.99 {
		return nil, errBadRequest("Price must be a positive number with up to 2 decimal places")
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return nil, errBadRequest("Invalid category ID format")
	}

	if len(req.Tags) > 10 {
		return nil, errBadRequest("At most 10 tags are allowed")
	}

	item := &models.MenuItem{
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		PriceCents:   priceCents,
		CategoryID:   categoryID,
		Availability: true,
		Tags:         req.Tags,
		ImageURL:     req.ImageURL,
	}
	if req.Availability != nil {
		item.Availability = *req.Availability
	}
	return item, nil
}

func listCacheKey(filter repository.MenuItemFilter, page, limit int) string {
	category := ""
	if filter.CategoryID != nil {
		category = filter.CategoryID.String()
	}
	availability := "all"
	if filter.Availability != nil {
		availability = fmt.Sprintf("%t", *filter.Availability)
	}
	return fmt.Sprintf("c=%s:a=%s:q=%s:p=%d:l=%d", category, availability, filter.Search, page, limit)
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func isAllowedImageContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
