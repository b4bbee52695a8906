package circles

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/models"
)

// AddMemberRequest represents a request to add a member to a circle
type AddMemberRequest struct {
	UserID   string `json:"user_id" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"required,min=1,max=50"`
	Verified bool   `json:"verified"`
	Unit     string `json:"unit"`
}

// AddMember adds a user to a circle
// @Summary Add a circle member
// @Description Record a user's membership in a circle
// @Tags circles
// @Accept json
// @Produce json
// @Param id path int true "Circle ID"
// @Param request body AddMemberRequest true "Member details"
// @Success 201 {object} models.Membership
// @Failure 404 {object} map[string]string "Circle not found"
// @Security BearerAuth
// @Router /circles/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var circle models.Circle
	if err := h.db.First(&circle, circleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Circle not found"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership := models.Membership{
		UserID:   req.UserID,
		CircleID: uint(circleID),
		Role:     req.Role,
		Verified: req.Verified,
		Unit:     req.Unit,
	}

	if err := h.db.Create(&membership).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// ListMembers returns all members of a circle
// @Summary List circle members
// @Description Get all membership rows for a circle
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Success 200 {array} models.Membership
// @Failure 404 {object} map[string]string "Circle not found"
// @Security BearerAuth
// @Router /circles/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var circle models.Circle
	if err := h.db.First(&circle, circleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Circle not found"})
		return
	}

	var members []models.Membership
	if err := h.db.Where("circle_id = ?", circleID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// RegisterMemberRoutes registers circle membership routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/members", h.AddMember)
	rg.GET("/:id/members", h.ListMembers)
}
