package orders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/auth"
	"github.com/localconnector/circled/pkg/circled/guard"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Handler handles menu and order requests
type Handler struct {
	db    *gorm.DB
	guard *guard.Guard
}

// NewHandler creates a new orders handler
func NewHandler(db *gorm.DB, g *guard.Guard) *Handler {
	return &Handler{db: db, guard: g}
}

// AddMenuItemRequest represents the request to add a menu item
type AddMenuItemRequest struct {
	CircleID    uint   `json:"circle_id" binding:"required"`
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=0"`
	Active      bool   `json:"active"`
}

// OrderItemRequest represents one line of an order
type OrderItemRequest struct {
	MenuItemID uint  `json:"menu_item_id" binding:"required"`
	Qty        int   `json:"qty" binding:"required,min=1"`
	PriceCents int64 `json:"price_cents" binding:"min=0"`
}

// PlaceOrderRequest represents the request to place an order
type PlaceOrderRequest struct {
	CircleID       uint               `json:"circle_id" binding:"required"`
	OriginCircleID *uint              `json:"origin_circle_id"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest represents the request to update an order's status
type UpdateOrderRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=PLACED CONFIRMED READY DELIVERED CANCELED"`
}

// ListMenu returns active menu items for a circle
// @Summary List menu items
// @Tags orders
// @Produce json
// @Param circleId query int true "Circle ID"
// @Success 200 {array} models.MenuItem
// @Security BearerAuth
// @Router /menu-items [get]
func (h *Handler) ListMenu(c *gin.Context) {
	circleID, err := strconv.ParseUint(c.Query("circleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid circleId"})
		return
	}

	var items []models.MenuItem
	if err := h.db.Where("circle_id = ? AND active = ?", circleID, true).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// AddMenuItem adds an item to a circle's menu
// @Summary Add a menu item
// @Tags orders
// @Accept json
// @Produce json
// @Param request body AddMenuItemRequest true "Menu item details"
// @Success 201 {object} models.MenuItem
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /menu-items [post]
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req AddMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.MenuItem{
		CircleID:    req.CircleID,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Active:      req.Active,
	}

	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add menu item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Place places an order into a circle
// @Summary Place an order
// @Description Place an order. Cross-circle ordering requires an ACTIVE edge granting PLACE_ORDER.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body PlaceOrderRequest true "Order details"
// @Success 201 {object} models.OrderHeader
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Cross-circle ordering not permitted"
// @Security BearerAuth
// @Router /orders [post]
func (h *Handler) Place(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Guard runs before anything is written
	if !h.guard.IsAllowed(req.OriginCircleID, req.CircleID, "PLACE_ORDER") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cross-circle ordering not permitted"})
		return
	}

	var total int64
	for _, item := range req.Items {
		total += item.PriceCents * int64(item.Qty)
	}

	header := models.OrderHeader{
		CircleID:   req.CircleID,
		UserID:     userID,
		Status:     models.OrderStatusPlaced,
		TotalCents: total,
	}

	// Header and lines commit or roll back together
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		for _, item := range req.Items {
			line := models.OrderItem{
				OrderID:    header.ID,
				MenuItemID: item.MenuItemID,
				Qty:        item.Qty,
				PriceCents: item.PriceCents,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	c.JSON(http.StatusCreated, header)
}

// UpdateStatus updates an order's status
// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body UpdateOrderRequest true "New status"
// @Success 200 {object} models.OrderHeader
// @Failure 404 {object} map[string]string "Order not found"
// @Security BearerAuth
// @Router /orders/{id} [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var header models.OrderHeader
	if err := h.db.First(&header, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	header.Status = req.Status
	if err := h.db.Save(&header).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, header)
}

// ListItems returns the line items of an order
// @Summary List order items
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {array} models.OrderItem
// @Failure 404 {object} map[string]string "Order not found"
// @Security BearerAuth
// @Router /orders/{id}/items [get]
func (h *Handler) ListItems(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var header models.OrderHeader
	if err := h.db.First(&header, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var items []models.OrderItem
	if err := h.db.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// RegisterRoutes registers menu and order routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/menu-items", h.ListMenu)
	rg.POST("/menu-items", h.AddMenuItem)
	rg.POST("/orders", h.Place)
	rg.PATCH("/orders/:id", h.UpdateStatus)
	rg.GET("/orders/:id/items", h.ListItems)
}
