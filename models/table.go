package models

import (
	"time"

	"github.com/google/uuid"
)

// Table is a physical restaurant table. QRSlug is the opaque public
// identifier encoded in the printed QR code; it is regenerated whenever
// the table is renumbered so stale codes stop resolving.
type Table struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number          int       `gorm:"uniqueIndex;not null" json:"number"`
	QRSlug          string    `gorm:"uniqueIndex;not null" json:"qrSlug"`
	Occupied        bool      `gorm:"not null;default:false" json:"occupied"`
	ActiveSessionID *string   `json:"activeSessionId"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
