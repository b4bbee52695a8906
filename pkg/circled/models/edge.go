package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// EdgeStatus represents the lifecycle status of a circle edge
type EdgeStatus string

const (
	EdgeStatusPending EdgeStatus = "PENDING"
	EdgeStatusActive  EdgeStatus = "ACTIVE"
	EdgeStatusRevoked EdgeStatus = "REVOKED"
)

// CircleEdge is a directed authorization edge between two circles. It gates
// specific cross-tenant actions (VIEW_PROMOS, PLACE_ORDER, PLACE_RESERVATION)
// from the origin circle into the target circle, and only while ACTIVE.
// Direction matters: an edge from A to B says nothing about B to A, and the
// graph is never traversed transitively.
type CircleEdge struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	FromCircleID   uint           `gorm:"not null;index" json:"from_circle_id"`
	ToCircleID     uint           `gorm:"not null;index" json:"to_circle_id"`
	AllowedActions string         `gorm:"type:text" json:"allowed_actions"` // JSON array of action tokens
	Status         EdgeStatus     `gorm:"type:varchar(20);not null" json:"status"`
}

// AllowsAction reports whether the edge's allow-list contains the action as an
// exact token. Membership is tested against the decoded list, never by
// substring, so "ORDER" does not match "PLACE_ORDER".
func (e *CircleEdge) AllowsAction(action string) bool {
	var actions []string
	if err := json.Unmarshal([]byte(e.AllowedActions), &actions); err != nil {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// EncodeActions serializes an action token list for storage on an edge.
func EncodeActions(actions []string) string {
	if actions == nil {
		actions = []string{}
	}
	b, _ := json.Marshal(actions)
	return string(b)
}
