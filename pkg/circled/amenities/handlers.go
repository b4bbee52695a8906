package amenities

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Handler handles amenity catalog requests. Amenities are configured
// out-of-band (seed data); the catalog is read-only through the API.
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new amenities handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List returns all amenities for a circle
// @Summary List amenities
// @Description Get all bookable amenities belonging to a circle
// @Tags amenities
// @Produce json
// @Param circleId query int true "Circle ID"
// @Success 200 {array} models.Amenity
// @Failure 400 {object} map[string]string "Invalid circle ID"
// @Security BearerAuth
// @Router /amenities [get]
func (h *Handler) List(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Query("circleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circleId"})
		return
	}

	var amenities []models.Amenity
	if err := h.db.Where("circle_id = ?", circleID).Order("name").Find(&amenities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch amenities"})
		return
	}

	c.JSON(http.StatusOK, amenities)
}

// RegisterRoutes registers amenity routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/amenities", h.List)
}
