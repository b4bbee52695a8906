package bookings

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/auth"
	"github.com/localconnector/circled/pkg/circled/guard"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/gorm"
)

// Handler handles booking scheduler requests
type Handler struct {
	db    *gorm.DB
	guard *guard.Guard
}

// NewHandler creates a new bookings handler
func NewHandler(db *gorm.DB, g *guard.Guard) *Handler {
	return &Handler{db: db, guard: g}
}

// CreateBookingRequest represents the request to create a booking.
// Timestamps are ISO-8601. OriginCircleID is set when booking into a circle
// other than the caller's own; the cross-circle guard checks it.
type CreateBookingRequest struct {
	CircleID       uint      `json:"circle_id" binding:"required"`
	AmenityID      uint      `json:"amenity_id" binding:"required"`
	OriginCircleID *uint     `json:"origin_circle_id"`
	StartAt        time.Time `json:"start_at" binding:"required"`
	EndAt          time.Time `json:"end_at" binding:"required"`
}

// BookingResponse represents a created booking plus the number of existing
// PENDING/APPROVED bookings it overlaps. Overlaps never block creation; the
// count is what an approver reconciles against.
type BookingResponse struct {
	models.Booking
	Conflicts int64 `json:"conflicts"`
}

// Create creates a booking against an amenity
// @Summary Create a booking
// @Description Book an amenity slot. Overlapping requests are accepted and left to the approval workflow to reconcile.
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "Booking details"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Cross-circle booking not permitted"
// @Failure 404 {object} map[string]string "Amenity not found"
// @Security BearerAuth
// @Router /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.StartAt.Before(req.EndAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_at must be before end_at"})
		return
	}

	// Guard runs before anything is written
	if !h.guard.IsAllowed(req.OriginCircleID, req.CircleID, "PLACE_RESERVATION") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cross-circle reservation not permitted"})
		return
	}

	var amenity models.Amenity
	if err := h.db.First(&amenity, req.AmenityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Amenity not found"})
		return
	}

	// Half-open interval overlap against live bookings: [s1,e1) and [s2,e2)
	// overlap iff s1 < e2 and s2 < e1
	var conflicts int64
	err := h.db.Model(&models.Booking{}).
		Where("amenity_id = ? AND status IN ? AND start_at < ? AND end_at > ?",
			req.AmenityID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusApproved},
			req.EndAt, req.StartAt).
		Count(&conflicts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check conflicts"})
		return
	}

	initial := models.BookingStatusApproved
	if amenity.ApprovalRequired {
		initial = models.BookingStatusPending
	}

	booking := models.Booking{
		CircleID:  req.CircleID,
		AmenityID: req.AmenityID,
		UserID:    userID,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Status:    initial,
	}

	if err := h.db.Create(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, BookingResponse{Booking: booking, Conflicts: conflicts})
}

// Get returns a booking by ID
// @Summary Get a booking
// @Description Get a booking by its ID
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var booking models.Booking
	if err := h.db.First(&booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListByAmenity returns all bookings for an amenity
// @Summary List bookings
// @Description Get all bookings for an amenity, newest first
// @Tags bookings
// @Produce json
// @Param amenityId query int true "Amenity ID"
// @Success 200 {array} models.Booking
// @Security BearerAuth
// @Router /bookings [get]
func (h *Handler) ListByAmenity(c *gin.Context) {
	amenityID, err := strconv.ParseUint(c.Query("amenityId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amenityId"})
		return
	}

	var bookings []models.Booking
	if err := h.db.Where("amenity_id = ?", amenityID).Order("start_at").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// setStatus loads a booking and applies a state-machine transition
func (h *Handler) setStatus(c *gin.Context, target models.BookingStatus) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var booking models.Booking
	if err := h.db.First(&booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	if !booking.CanTransitionTo(target) {
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid transition from " + string(booking.Status) + " to " + string(target)})
		return
	}

	booking.Status = target
	if err := h.db.Save(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Approve approves a pending booking
// @Summary Approve a booking
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /bookings/{id}/approve [patch]
func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, models.BookingStatusApproved)
}

// Reject rejects a pending booking
// @Summary Reject a booking
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /bookings/{id}/reject [patch]
func (h *Handler) Reject(c *gin.Context) {
	h.setStatus(c, models.BookingStatusRejected)
}

// Cancel cancels a pending or approved booking
// @Summary Cancel a booking
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /bookings/{id}/cancel [patch]
func (h *Handler) Cancel(c *gin.Context) {
	h.setStatus(c, models.BookingStatusCanceled)
}

// RegisterRoutes registers booking routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.ListByAmenity)
	rg.GET("/bookings/:id", h.Get)
	rg.PATCH("/bookings/:id/approve", h.Approve)
	rg.PATCH("/bookings/:id/reject", h.Reject)
	rg.PATCH("/bookings/:id/cancel", h.Cancel)
	rg.GET("/bookings/:id/ics", h.ExportICS)
}
