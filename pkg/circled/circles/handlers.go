package circles

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/auth"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler handles circle-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new circles handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateCircleRequest represents the request to create a circle
type CreateCircleRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=100"`
	Type      string   `json:"type" binding:"required,min=1,max=50"`
	CenterLat *float64 `json:"center_lat"`
	CenterLng *float64 `json:"center_lng"`
	Radius    *float64 `json:"radius"`
	Branding  string   `json:"branding"`
	Policies  string   `json:"policies"`
	Features  []string `json:"features"`
}

// FeatureToggleRequest represents the request to set a feature flag
type FeatureToggleRequest struct {
	FeatureKey string `json:"feature_key" binding:"required,min=1,max=50"`
	Enabled    bool   `json:"enabled"`
}

// CreateChildRequest represents the request to create a child circle
type CreateChildRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Type string `json:"type" binding:"required,min=1,max=50"`
}

// CircleDetailsResponse represents a circle with its features and policy blob
type CircleDetailsResponse struct {
	Circle   models.Circle          `json:"circle"`
	Features []models.CircleFeature `json:"features"`
	Policies string                 `json:"policies,omitempty"`
}

// Create creates a new circle owned by the caller
// @Summary Create a circle
// @Description Create a circle and seed its feature flags in one transaction
// @Tags circles
// @Accept json
// @Produce json
// @Param request body CreateCircleRequest true "Circle details"
// @Success 201 {object} models.Circle
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /circles [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	circle := models.Circle{
		OwnerUserID: userID,
		Name:        req.Name,
		Type:        req.Type,
		CenterLat:   req.CenterLat,
		CenterLng:   req.CenterLng,
		RadiusMiles: req.Radius,
		Branding:    req.Branding,
		Policies:    req.Policies,
	}

	// Circle and seeded feature rows commit or roll back together
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&circle).Error; err != nil {
			return err
		}
		for _, key := range req.Features {
			feature := models.CircleFeature{
				CircleID:   circle.ID,
				FeatureKey: strings.ToUpper(key),
				Enabled:    true,
			}
			if err := tx.Create(&feature).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create circle"})
		return
	}

	c.JSON(http.StatusCreated, circle)
}

// ListMine returns all circles owned by the caller
// @Summary List my circles
// @Description Get all circles owned by the current user
// @Tags circles
// @Produce json
// @Success 200 {array} models.Circle
// @Security BearerAuth
// @Router /circles/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var circles []models.Circle
	if err := h.db.Where("owner_user_id = ?", userID).Order("created_at DESC").Find(&circles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch circles"})
		return
	}

	c.JSON(http.StatusOK, circles)
}

// Get returns a circle with its features and policy blob
// @Summary Get circle details
// @Description Get a circle, its feature flags, and its policies
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Success 200 {object} CircleDetailsResponse
// @Failure 404 {object} map[string]string "Circle not found"
// @Security BearerAuth
// @Router /circles/{id} [get]
func (h *Handler) Get(c *gin.Context) {
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

	var features []models.CircleFeature
	if err := h.db.Where("circle_id = ?", circleID).Find(&features).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch features"})
		return
	}

	c.JSON(http.StatusOK, CircleDetailsResponse{
		Circle:   circle,
		Features: features,
		Policies: circle.Policies,
	})
}

// SetFeature enables or disables a feature flag on a circle
// @Summary Set a feature flag
// @Description Upsert a feature flag for a circle (keys are case-insensitive)
// @Tags circles
// @Accept json
// @Produce json
// @Param id path int true "Circle ID"
// @Param request body FeatureToggleRequest true "Feature toggle"
// @Success 200 {object} models.CircleFeature
// @Failure 404 {object} map[string]string "Circle not found"
// @Security BearerAuth
// @Router /circles/{id}/features [post]
func (h *Handler) SetFeature(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var req FeatureToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var circle models.Circle
	if err := h.db.First(&circle, circleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Circle not found"})
		return
	}

	// Keys are stored upper-cased; the upsert keyed on (circle_id, feature_key)
	// makes concurrent toggles of the same key converge on a single row.
	feature := models.CircleFeature{
		CircleID:   uint(circleID),
		FeatureKey: strings.ToUpper(req.FeatureKey),
		Enabled:    req.Enabled,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "circle_id"}, {Name: "feature_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"enabled": req.Enabled}),
	}).Create(&feature).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set feature"})
		return
	}

	// Re-read so updates return the surviving row, not the candidate insert
	var saved models.CircleFeature
	if err := h.db.Where("circle_id = ? AND feature_key = ?", circleID, feature.FeatureKey).First(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set feature"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// ListFeatures returns all feature flags for a circle
// @Summary List feature flags
// @Description Get all feature flags for a circle
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Success 200 {array} models.CircleFeature
// @Security BearerAuth
// @Router /circles/{id}/features [get]
func (h *Handler) ListFeatures(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var features []models.CircleFeature
	if err := h.db.Where("circle_id = ?", circleID).Find(&features).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch features"})
		return
	}

	c.JSON(http.StatusOK, features)
}

// CreateChild creates a child circle under a parent
// @Summary Create a child circle
// @Description Create a new circle and record it as a child of the parent
// @Tags circles
// @Accept json
// @Produce json
// @Param id path int true "Parent circle ID"
// @Param request body CreateChildRequest true "Child circle details"
// @Success 201 {object} models.Circle
// @Failure 404 {object} map[string]string "Parent circle not found"
// @Security BearerAuth
// @Router /circles/{id}/children [post]
func (h *Handler) CreateChild(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	parentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var parent models.Circle
	if err := h.db.First(&parent, parentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parent circle not found"})
		return
	}

	var req CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	child := models.Circle{
		OwnerUserID: userID,
		Name:        req.Name,
		Type:        req.Type,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&child).Error; err != nil {
			return err
		}
		edge := models.CircleHierarchy{ParentID: uint(parentID), ChildID: child.ID}
		return tx.Create(&edge).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create child circle"})
		return
	}

	c.JSON(http.StatusCreated, child)
}

// ListChildren returns the child circles of a parent
// @Summary List child circles
// @Description Get all circles recorded as children of the parent
// @Tags circles
// @Produce json
// @Param id path int true "Parent circle ID"
// @Success 200 {array} models.Circle
// @Failure 404 {object} map[string]string "Parent circle not found"
// @Security BearerAuth
// @Router /circles/{id}/children [get]
func (h *Handler) ListChildren(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circle ID"})
		return
	}

	var parent models.Circle
	if err := h.db.First(&parent, parentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parent circle not found"})
		return
	}

	var edges []models.CircleHierarchy
	if err := h.db.Where("parent_id = ?", parentID).Find(&edges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch children"})
		return
	}

	childIDs := make([]uint, len(edges))
	for i, e := range edges {
		childIDs[i] = e.ChildID
	}

	children := []models.Circle{}
	if len(childIDs) > 0 {
		if err := h.db.Where("id IN ?", childIDs).Find(&children).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch children"})
			return
		}
	}

	c.JSON(http.StatusOK, children)
}

// RegisterRoutes registers circle routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/mine", h.ListMine)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/features", h.SetFeature)
	rg.GET("/:id/features", h.ListFeatures)
	rg.POST("/:id/children", h.CreateChild)
	rg.GET("/:id/children", h.ListChildren)
}
