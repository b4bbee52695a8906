package models

import (
	"time"

	"gorm.io/gorm"
)

// Circle represents a tenant node in the circle graph: a community, building,
// business, or personal space. Circles scope features, amenities, bookings,
// promotions, and orders. The owner identity is the external user ID of
// whoever created the circle and is never rewritten after creation.
type Circle struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerUserID string         `gorm:"not null;index" json:"owner_user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Type        string         `gorm:"not null" json:"type"` // free-form category, e.g. APARTMENT, HOTEL, MERCHANT
	CenterLat   *float64       `json:"center_lat,omitempty"`
	CenterLng   *float64       `json:"center_lng,omitempty"`
	RadiusMiles *float64       `json:"radius_miles,omitempty"`
	Branding    string         `gorm:"type:text" json:"branding,omitempty"` // opaque JSON blob
	Policies    string         `gorm:"type:text" json:"policies,omitempty"` // opaque JSON blob

	// Relationships
	Features []CircleFeature `gorm:"foreignKey:CircleID" json:"features,omitempty"`
	Members  []Membership    `gorm:"foreignKey:CircleID" json:"members,omitempty"`
}

// CircleHierarchy records a parent/child relation between two circles.
// The model is a plain adjacency relation indexed both ways; nothing at the
// storage layer forces a single root. Children created through the registry
// are always brand new circles, so cycles cannot be introduced that way.
type CircleHierarchy struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ParentID  uint           `gorm:"not null;index" json:"parent_id"`
	ChildID   uint           `gorm:"not null;index" json:"child_id"`
}

// CircleFeature is a per-circle feature toggle, e.g. RESERVATIONS or
// TASKBOARD. Keys are stored upper-cased so the unique index doubles as the
// case-insensitive match, and writes go through an ON CONFLICT upsert so
// concurrent toggles of the same key cannot produce duplicate rows.
type CircleFeature struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID   uint           `gorm:"not null;uniqueIndex:idx_circle_feature" json:"circle_id"`
	FeatureKey string         `gorm:"not null;uniqueIndex:idx_circle_feature" json:"feature_key"`
	Enabled    bool           `gorm:"not null" json:"enabled"`
}
