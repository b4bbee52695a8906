package edges

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Handler handles circle edge requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new edges handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ProposeEdgeRequest represents the request to propose an edge
type ProposeEdgeRequest struct {
	FromCircleID   uint     `json:"from_circle_id" binding:"required"`
	ToCircleID     uint     `json:"to_circle_id" binding:"required"`
	AllowedActions []string `json:"allowed_actions"`
}

// UpdateEdgeRequest represents the request to update an edge's status
type UpdateEdgeRequest struct {
	Status models.EdgeStatus `json:"status" binding:"required,oneof=PENDING ACTIVE REVOKED"`
}

// Propose proposes a new directed edge between two circles
// @Summary Propose an edge
// @Description Propose a cross-circle authorization edge; edges always start PENDING
// @Tags edges
// @Accept json
// @Produce json
// @Param request body ProposeEdgeRequest true "Edge details"
// @Success 201 {object} models.CircleEdge
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /circles/edges [post]
func (h *Handler) Propose(c *gin.Context) {
	var req ProposeEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edge := models.CircleEdge{
		FromCircleID:   req.FromCircleID,
		ToCircleID:     req.ToCircleID,
		AllowedActions: models.EncodeActions(req.AllowedActions),
		Status:         models.EdgeStatusPending,
	}

	if err := h.db.Create(&edge).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create edge"})
		return
	}

	c.JSON(http.StatusCreated, edge)
}

// UpdateStatus updates the lifecycle status of an edge
// @Summary Update edge status
// @Description Set an edge's status to PENDING, ACTIVE, or REVOKED
// @Tags edges
// @Accept json
// @Produce json
// @Param id path int true "Edge ID"
// @Param request body UpdateEdgeRequest true "New status"
// @Success 200 {object} models.CircleEdge
// @Failure 404 {object} map[string]string "Edge not found"
// @Security BearerAuth
// @Router /circles/edges/{id} [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	edgeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid edge ID"})
		return
	}

	var req UpdateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var edge models.CircleEdge
	if err := h.db.First(&edge, edgeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edge not found"})
		return
	}

	edge.Status = req.Status
	if err := h.db.Save(&edge).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update edge"})
		return
	}

	c.JSON(http.StatusOK, edge)
}

// ListFrom returns all edges originating from a circle
// @Summary List edges from a circle
// @Description Get all edges whose origin is the given circle
// @Tags edges
// @Produce json
// @Param fromCircleId query int true "Origin circle ID"
// @Success 200 {array} models.CircleEdge
// @Security BearerAuth
// @Router /circles/edges [get]
func (h *Handler) ListFrom(c *gin.Context) {
	fromID, err := strconv.ParseUint(c.Query("fromCircleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fromCircleId"})
		return
	}

	var edges []models.CircleEdge
	if err := h.db.Where("from_circle_id = ?", fromID).Find(&edges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch edges"})
		return
	}

	c.JSON(http.StatusOK, edges)
}

// RegisterRoutes registers edge routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/edges", h.Propose)
	rg.PATCH("/edges/:id", h.UpdateStatus)
	rg.GET("/edges", h.ListFrom)
}
