package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership records a user's belonging to a circle. User identities are
// external strings (JWT subjects), not local rows. The unit is free-form,
// e.g. an apartment number.
type Membership struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    string         `gorm:"not null;index" json:"user_id"`
	CircleID  uint           `gorm:"not null;index" json:"circle_id"`
	Role      string         `gorm:"not null" json:"role"`
	Verified  bool           `gorm:"not null" json:"verified"`
	Unit      string         `json:"unit,omitempty"`
}
