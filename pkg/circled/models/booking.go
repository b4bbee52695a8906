package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus represents a booking's position in the approval workflow
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "PENDING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
	BookingStatusCanceled BookingStatus = "CANCELED"
)

// Booking is a time-bounded reservation request against an amenity. The
// interval is half-open: [StartAt, EndAt). A booking starts PENDING when the
// amenity requires approval, APPROVED otherwise, and is only ever mutated
// through the approve/reject/cancel transitions.
type Booking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CircleID  uint           `gorm:"not null;index" json:"circle_id"`
	AmenityID uint           `gorm:"not null;index" json:"amenity_id"`
	UserID    string         `gorm:"not null;index" json:"user_id"`
	StartAt   time.Time      `gorm:"not null" json:"start_at"`
	EndAt     time.Time      `gorm:"not null" json:"end_at"`
	Status    BookingStatus  `gorm:"type:varchar(20);not null" json:"status"`
}

// CanTransitionTo reports whether the state machine permits moving from the
// booking's current status to the target. PENDING may become APPROVED,
// REJECTED or CANCELED; APPROVED may still be CANCELED; REJECTED and CANCELED
// are terminal.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return target == BookingStatusApproved || target == BookingStatusRejected || target == BookingStatusCanceled
	case BookingStatusApproved:
		return target == BookingStatusCanceled
	default:
		return false
	}
}

// IntervalsOverlap is the half-open interval conflict test: [s1,e1) and
// [s2,e2) overlap iff s1 < e2 and s2 < e1. Intervals that merely touch at a
// boundary do not conflict.
func IntervalsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
