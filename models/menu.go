package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type MenuItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"not null;index:idx_menu_items_category_name,priority:2" json:"name"`
	Description  string    `gorm:"default:''" json:"description"`
	PriceCents   int64     `gorm:"not null" json:"-"`
	Price        float64   `gorm:"-" json:"price"`
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_menu_items_category_name,priority:1" json:"categoryId"`
	Availability bool      `gorm:"not null;default:true" json:"availability"`
	Tags         []string  `gorm:"serializer:json" json:"tags"`
	Popularity   int       `gorm:"not null;default:0" json:"popularity"`
	ImageURL     string    `gorm:"default:''" json:"imageUrl"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (m *MenuItem) AfterFind(_ *gorm.DB) error {
	m.Price = float64(m.PriceCents) / 100
	return nil
}
