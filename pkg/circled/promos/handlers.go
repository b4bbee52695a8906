package promos

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/guard"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Handler handles promotion requests
type Handler struct {
	db    *gorm.DB
	guard *guard.Guard
}

// NewHandler creates a new promotions handler
func NewHandler(db *gorm.DB, g *guard.Guard) *Handler {
	return &Handler{db: db, guard: g}
}

// CreatePromoRequest represents the request to create a promotion
type CreatePromoRequest struct {
	CircleID   uint       `json:"circle_id" binding:"required"`
	MerchantID *uint      `json:"merchant_id"`
	Title      string     `json:"title" binding:"required,min=1,max=200"`
	Body       string     `json:"body"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Active     bool       `json:"active"`
}

// List returns active promotions for a circle
// @Summary List promotions
// @Description Get active promotions for a circle. Cross-circle listing requires an ACTIVE edge granting VIEW_PROMOS.
// @Tags promos
// @Produce json
// @Param circleId query int true "Circle ID"
// @Param originCircleId query int false "Origin circle ID for cross-circle access"
// @Success 200 {array} models.Promo
// @Failure 403 {object} map[string]string "Cross-circle access not permitted"
// @Security BearerAuth
// @Router /promos [get]
func (h *Handler) List(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Query("circleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circleId"})
		return
	}

	var origin *uint
	if raw := c.Query("originCircleId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid originCircleId"})
			return
		}
		o := uint(parsed)
		origin = &o
	}

	if !h.guard.IsAllowed(origin, uint(circleID), "VIEW_PROMOS") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cross-circle promo access not permitted"})
		return
	}

	var promos []models.Promo
	if err := h.db.Where("circle_id = ? AND active = ?", circleID, true).Order("created_at DESC").Find(&promos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promos"})
		return
	}

	c.JSON(http.StatusOK, promos)
}

// Create creates a new promotion
// @Summary Create a promotion
// @Tags promos
// @Accept json
// @Produce json
// @Param request body CreatePromoRequest true "Promotion details"
// @Success 201 {object} models.Promo
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /promos [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promo := models.Promo{
		CircleID:   req.CircleID,
		MerchantID: req.MerchantID,
		Title:      req.Title,
		Body:       req.Body,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Active:     req.Active,
	}

	if err := h.db.Create(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo"})
		return
	}

	c.JSON(http.StatusCreated, promo)
}

// Claim increments a promotion's claim counter
// @Summary Claim a promotion
// @Tags promos
// @Produce json
// @Param id path int true "Promo ID"
// @Success 200 {object} models.Promo
// @Failure 404 {object} map[string]string "Promo not found"
// @Security BearerAuth
// @Router /promos/{id}/claim [post]
func (h *Handler) Claim(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promo ID"})
		return
	}

	var promo models.Promo
	if err := h.db.First(&promo, promoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	// Atomic increment; double-claims just count twice
	if err := h.db.Model(&promo).Update("claim_count", gorm.Expr("claim_count + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim promo"})
		return
	}

	h.db.First(&promo, promoID)
	c.JSON(http.StatusOK, promo)
}

// RegisterRoutes registers promotion routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/promos", h.List)
	rg.POST("/promos", h.Create)
	rg.POST("/promos/:id/claim", h.Claim)
}
