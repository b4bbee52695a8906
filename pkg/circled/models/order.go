package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents an order's fulfilment status
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// MenuItem is an orderable item on a circle's menu
type MenuItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID    uint           `gorm:"not null;index" json:"circle_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	PriceCents  int64          `gorm:"not null" json:"price_cents"`
	Active      bool           `gorm:"not null" json:"active"`
}

// OrderHeader is an order placed into a circle. Placing an order from a
// different origin circle is gated by the cross-circle guard (PLACE_ORDER).
type OrderHeader struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID   uint           `gorm:"not null;index" json:"circle_id"`
	UserID     string         `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus    `gorm:"type:varchar(20);not null" json:"status"`
	TotalCents int64          `gorm:"not null" json:"total_cents"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is a line on an order
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	OrderID    uint           `gorm:"not null;index" json:"order_id"`
	MenuItemID uint           `gorm:"not null" json:"menu_item_id"`
	Qty        int            `gorm:"not null" json:"qty"`
	PriceCents int64          `gorm:"not null" json:"price_cents"`
}
