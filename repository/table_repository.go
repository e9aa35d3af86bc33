package repository

import (
	"context"

	"qr-restaurant-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	FindByNumber(ctx context.Context, number int) (*models.Table, error)
	FindByQRSlug(ctx context.Context, qrSlug string) (*models.Table, error)
	List(ctx context.Context) ([]models.Table, error)
	Update(ctx context.Context, table *models.Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormTableRepository struct {
	db *gorm.DB
}

func NewGormTableRepository(db *gorm.DB) TableRepository {
	return &GormTableRepository{db: db}
}

func (r *GormTableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *GormTableRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *GormTableRepository) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *GormTableRepository) FindByQRSlug(ctx context.Context, qrSlug string) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "qr_slug = ?", qrSlug).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *GormTableRepository) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.db.WithContext(ctx).Order("number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *GormTableRepository) Update(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Save(table).Error
}

func (r *GormTableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Table{}, "id = ?", id).Error
}
