package guard

import (
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Guard answers whether a cross-circle action is permitted. It is the read
// side of the edge authorization graph: pure queries, no side effects, checked
// synchronously on the request path before the underlying operation runs.
type Guard struct {
	db *gorm.DB
}

// New creates a new cross-circle guard
func New(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// IsAllowed reports whether the action is permitted from the origin circle
// into the target circle. A nil origin (no cross-circle context) and
// same-circle access always pass. Otherwise there must be an ACTIVE edge from
// origin to target whose allow-list contains the action token. Edges are not
// chained: A reaching C requires a direct A->C edge even if A->B and B->C
// exist.
func (g *Guard) IsAllowed(originCircleID *uint, targetCircleID uint, action string) bool {
	if originCircleID == nil || *originCircleID == targetCircleID {
		return true
	}

	var edges []models.CircleEdge
	if err := g.db.Where("from_circle_id = ? AND to_circle_id = ? AND status = ?",
		*originCircleID, targetCircleID, models.EdgeStatusActive).Find(&edges).Error; err != nil {
		return false
	}

	for _, edge := range edges {
		if edge.AllowsAction(action) {
			return true
		}
	}
	return false
}
