package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a guest's session at a table, created when they scan the
// QR code and identify themselves. Unlike User accounts, customers have
// no password; the session token is their only credential.
type Customer struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"not null;default:'Guest'" json:"name"`
	Email        string    `gorm:"default:''" json:"email,omitempty"`
	Phone        string    `gorm:"default:''" json:"phone,omitempty"`
	TableID      uuid.UUID `gorm:"type:uuid;not null;index:idx_customers_table_active,priority:1" json:"tableId"`
	SessionToken string    `gorm:"uniqueIndex;not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true;index:idx_customers_table_active,priority:2" json:"isActive"`
	LastActivity time.Time `gorm:"not null" json:"lastActivity"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
