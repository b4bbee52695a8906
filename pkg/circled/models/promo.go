package models

import (
	"time"

	"gorm.io/gorm"
)

// Promo is a merchant promotion published into a circle. Listing promos from a
// different origin circle is gated by the cross-circle guard (VIEW_PROMOS).
type Promo struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID   uint           `gorm:"not null;index" json:"circle_id"`
	MerchantID *uint          `json:"merchant_id,omitempty"`
	Title      string         `gorm:"not null" json:"title"`
	Body       string         `gorm:"type:text" json:"body,omitempty"`
	StartsAt   *time.Time     `json:"starts_at,omitempty"`
	EndsAt     *time.Time     `json:"ends_at,omitempty"`
	Active     bool           `gorm:"not null" json:"active"`
	ClaimCount uint           `gorm:"default:0" json:"claim_count"`
}
