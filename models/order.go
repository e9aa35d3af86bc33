package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses follow the kitchen workflow. Transitions are not enforced
// (staff may correct mistakes); see IsStatusTransitionAllowed.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"orderNumber"`
	TableID     *uuid.UUID  `gorm:"type:uuid;index" json:"tableId"`
	CustomerID  *uuid.UUID  `gorm:"type:uuid;index" json:"customerId"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalCents  int64       `gorm:"not null" json:"-"`
	Totals      float64     `gorm:"-" json:"totals"`
	Status      string      `gorm:"type:varchar(20);not null;default:'placed'" json:"status"`
	Payment     Payment     `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	QRSlug      string      `gorm:"column:meta_qr_slug" json:"qrSlug,omitempty"`
	DeviceInfo  string      `gorm:"column:meta_device_info" json:"deviceInfo,omitempty"`
	Version     int         `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OrderItem is a snapshot of the menu item at order time. Later menu price
// or name changes never affect persisted orders.
type OrderItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	MenuItemID *uuid.UUID `gorm:"type:uuid" json:"menuItemId"`
	Name       string     `gorm:"not null" json:"name"`
	PriceCents int64      `gorm:"not null" json:"-"`
	Price      float64    `gorm:"-" json:"price"`
	Qty        int        `gorm:"not null" json:"qty"`
	Note       string     `gorm:"default:''" json:"note"`
}

// Payment is the provider sub-record on an order. Provider is "stripe" for
// live intents and "stripe-demo" when no credentials are configured.
type Payment struct {
	Provider        string  `gorm:"type:varchar(20)" json:"provider,omitempty"`
	Status          string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentIntentID *string `gorm:"uniqueIndex" json:"paymentIntentId,omitempty"`
	ClientSecret    *string `json:"clientSecret,omitempty"`
}

func (o *Order) AfterFind(_ *gorm.DB) error {
	o.Totals = float64(o.TotalCents) / 100
	return nil
}

func (i *OrderItem) AfterFind(_ *gorm.DB) error {
	i.Price = float64(i.PriceCents) / 100
	return nil
}

// FillDerived recomputes the JSON-facing decimal amounts from the stored
// minor units. Repositories call AfterFind; services call this for orders
// built in memory.
func (o *Order) FillDerived() {
	o.Totals = float64(o.TotalCents) / 100
	for idx := range o.Items {
		o.Items[idx].Price = float64(o.Items[idx].PriceCents) / 100
	}
}

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPlaced, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsStatusTransitionAllowed reports whether an order may move from one
// status to another. The current policy is permissive: staff can set any
// known status from any other, which mirrors how floor staff actually fix
// mis-taps. Swap the body for a strict graph if that ever changes.
func IsStatusTransitionAllowed(from, to string) bool {
	return IsValidOrderStatus(to)
}
