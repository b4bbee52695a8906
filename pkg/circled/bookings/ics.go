package bookings

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/models"
)

// icsTimestamp is the iCalendar UTC timestamp layout (yyyyMMdd'T'HHmmss'Z')
const icsTimestamp = "20060102T150405Z"

// renderICS renders a minimal single-event calendar for a booking
func renderICS(b models.Booking) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//circled//booking//EN",
		"BEGIN:VEVENT",
		"UID:booking-" + strconv.FormatUint(uint64(b.ID), 10) + "@circled",
		"DTSTART:" + b.StartAt.UTC().Format(icsTimestamp),
		"DTEND:" + b.EndAt.UTC().Format(icsTimestamp),
		"DTSTAMP:" + time.Now().UTC().Format(icsTimestamp),
		"SUMMARY:Amenity Booking",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// ExportICS exports a booking as an iCalendar event
// @Summary Export booking as calendar
// @Description Download a minimal iCalendar VEVENT for a booking
// @Tags bookings
// @Produce text/calendar
// @Param id path int true "Booking ID"
// @Success 200 {string} string "iCalendar data"
// @Failure 404 {object} map[string]string "Booking not found"
// @Security BearerAuth
// @Router /bookings/{id}/ics [get]
func (h *Handler) ExportICS(c *gin.Context) {
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

	c.Header("Content-Disposition", "attachment; filename=booking.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(renderICS(booking)))
}
