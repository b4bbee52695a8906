package models

import (
	"time"

	"gorm.io/gorm"
)

// Amenity is a bookable shared resource owned by a circle, e.g. a clubhouse
// or gym. Amenities are seeded out-of-band and read-only from the scheduler's
// perspective. Capacity, slot length, weekly cap and cancellation window are
// declared policy the approval workflow can consult; the scheduler itself does
// not enforce them.
type Amenity struct {
	ID                      uint           `gorm:"primarykey" json:"id"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID                uint           `gorm:"not null;index" json:"circle_id"`
	Name                    string         `gorm:"not null" json:"name"`
	Hours                   string         `json:"hours,omitempty"` // opaque operating-hours string
	Capacity                int            `json:"capacity"`
	ApprovalRequired        bool           `gorm:"not null" json:"approval_required"`
	SlotLengthMins          int            `json:"slot_length_mins"`
	MaxPerWeek              int            `json:"max_per_week"`
	CancellationWindowHours int            `json:"cancellation_window_hours"`
}
