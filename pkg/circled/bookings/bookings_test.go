package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/auth"
	"github.com/localconnector/circled/pkg/circled/guard"
	"github.com/localconnector/circled/pkg/circled/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, guard.New(db))

	api := r.Group("")
	api.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(api)

	return r
}

func getAuthHeader(userID string) string {
	token, _ := auth.GenerateToken(userID, "resident", 0)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func createAmenity(t *testing.T, db *gorm.DB, circleID uint, approvalRequired bool) models.Amenity {
	amenity := models.Amenity{
		CircleID:         circleID,
		Name:             "Clubhouse",
		Capacity:         40,
		ApprovalRequired: approvalRequired,
		SlotLengthMins:   120,
	}
	if err := db.Create(&amenity).Error; err != nil {
		t.Fatalf("Failed to create amenity: %v", err)
	}
	return amenity
}

func slot(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC)
}

func TestCreateBookingPendingWhenApprovalRequired(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var booking BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &booking)

	if booking.Status != models.BookingStatusPending {
		t.Errorf("Expected status PENDING, got %s", booking.Status)
	}
	if booking.UserID != "alice" {
		t.Errorf("Expected user alice, got %s", booking.UserID)
	}
	if booking.Conflicts != 0 {
		t.Errorf("Expected 0 conflicts, got %d", booking.Conflicts)
	}
}

func TestCreateBookingApprovedWhenNoApprovalRequired(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, false)

	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var booking BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &booking)

	if booking.Status != models.BookingStatusApproved {
		t.Errorf("Expected status APPROVED, got %s", booking.Status)
	}
}

func TestCreateBookingRejectsInvalidInterval(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	// start == end
	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(10, 0),
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for zero-length interval, got %d", resp.Code)
	}

	// start > end
	resp = doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(11, 0),
		EndAt:     slot(10, 0),
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for reversed interval, got %d", resp.Code)
	}
}

func TestCreateBookingAmenityNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: 999,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestOverlappingBookingsBothSucceed(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	// B1 = [10:00, 11:00)
	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 for B1, got %d: %s", resp.Code, resp.Body.String())
	}
	var b1 BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &b1)

	// B2 = [10:30, 11:30) overlaps B1 but is still created
	resp = doJSON(router, "POST", "/bookings", "bob", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 30),
		EndAt:     slot(11, 30),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 for B2, got %d: %s", resp.Code, resp.Body.String())
	}
	var b2 BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &b2)

	if b2.Status != models.BookingStatusPending {
		t.Errorf("Expected B2 status PENDING, got %s", b2.Status)
	}
	if b2.Conflicts != 1 {
		t.Errorf("Expected B2 to report 1 conflict, got %d", b2.Conflicts)
	}

	// B1 stays PENDING: no auto-reject on conflict
	var stored models.Booking
	db.First(&stored, b1.ID)
	if stored.Status != models.BookingStatusPending {
		t.Errorf("Expected B1 to remain PENDING, got %s", stored.Status)
	}

	// Approving B1 leaves B2 untouched
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/approve", b1.ID), "admin", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	db.First(&stored, b2.ID)
	if stored.Status != models.BookingStatusPending {
		t.Errorf("Expected B2 to remain PENDING after B1 approval, got %s", stored.Status)
	}
}

func TestBoundaryTouchingBookingsDoNotConflict(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})

	// [11:00, 12:00) touches [10:00, 11:00) at the boundary only
	resp := doJSON(router, "POST", "/bookings", "bob", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(11, 0),
		EndAt:     slot(12, 0),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var booking BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &booking)

	if booking.Conflicts != 0 {
		t.Errorf("Expected 0 conflicts for boundary-touching interval, got %d", booking.Conflicts)
	}
}

func TestTerminalBookingsDoNotCountAsConflicts(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	db.Create(&models.Booking{CircleID: 1, AmenityID: amenity.ID, UserID: "x", StartAt: slot(10, 0), EndAt: slot(11, 0), Status: models.BookingStatusRejected})
	db.Create(&models.Booking{CircleID: 1, AmenityID: amenity.ID, UserID: "y", StartAt: slot(10, 0), EndAt: slot(11, 0), Status: models.BookingStatusCanceled})

	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:  1,
		AmenityID: amenity.ID,
		StartAt:   slot(10, 0),
		EndAt:     slot(11, 0),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var booking BookingResponse
	json.Unmarshal(resp.Body.Bytes(), &booking)

	if booking.Conflicts != 0 {
		t.Errorf("Expected REJECTED/CANCELED bookings to be ignored, got %d conflicts", booking.Conflicts)
	}
}

func TestCrossCircleBookingRequiresEdge(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 2, false)
	origin := uint(1)

	// No edge: denied, nothing written
	resp := doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:       2,
		AmenityID:      amenity.ID,
		OriginCircleID: &origin,
		StartAt:        slot(10, 0),
		EndAt:          slot(11, 0),
	})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}
	var count int64
	db.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no bookings after denial, got %d", count)
	}

	// ACTIVE edge with the right token: allowed
	db.Create(&models.CircleEdge{
		FromCircleID:   1,
		ToCircleID:     2,
		AllowedActions: models.EncodeActions([]string{"PLACE_RESERVATION"}),
		Status:         models.EdgeStatusActive,
	})

	resp = doJSON(router, "POST", "/bookings", "alice", CreateBookingRequest{
		CircleID:       2,
		AmenityID:      amenity.ID,
		OriginCircleID: &origin,
		StartAt:        slot(10, 0),
		EndAt:          slot(11, 0),
	})
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 with ACTIVE edge, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestApproveRejectCancelTransitions(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	newBooking := func(status models.BookingStatus) models.Booking {
		b := models.Booking{CircleID: 1, AmenityID: amenity.ID, UserID: "alice", StartAt: slot(10, 0), EndAt: slot(11, 0), Status: status}
		db.Create(&b)
		return b
	}

	// PENDING -> APPROVED
	b := newBooking(models.BookingStatusPending)
	resp := doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/approve", b.ID), "admin", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 approving PENDING, got %d", resp.Code)
	}

	// APPROVED -> CANCELED
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/cancel", b.ID), "admin", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 canceling APPROVED, got %d", resp.Code)
	}

	// CANCELED is terminal
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/approve", b.ID), "admin", nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected 409 approving CANCELED, got %d", resp.Code)
	}

	// PENDING -> REJECTED, then terminal
	b = newBooking(models.BookingStatusPending)
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/reject", b.ID), "admin", nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 rejecting PENDING, got %d", resp.Code)
	}
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/cancel", b.ID), "admin", nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected 409 canceling REJECTED, got %d", resp.Code)
	}

	// APPROVED cannot be rejected
	b = newBooking(models.BookingStatusApproved)
	resp = doJSON(router, "PATCH", fmt.Sprintf("/bookings/%d/reject", b.ID), "admin", nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected 409 rejecting APPROVED, got %d", resp.Code)
	}
}

func TestTransitionBookingNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "PATCH", "/bookings/999/approve", "admin", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestListByAmenity(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, true)

	db.Create(&models.Booking{CircleID: 1, AmenityID: amenity.ID, UserID: "a", StartAt: slot(12, 0), EndAt: slot(13, 0), Status: models.BookingStatusPending})
	db.Create(&models.Booking{CircleID: 1, AmenityID: amenity.ID, UserID: "b", StartAt: slot(10, 0), EndAt: slot(11, 0), Status: models.BookingStatusApproved})
	db.Create(&models.Booking{CircleID: 1, AmenityID: 999, UserID: "c", StartAt: slot(10, 0), EndAt: slot(11, 0), Status: models.BookingStatusPending})

	resp := doJSON(router, "GET", fmt.Sprintf("/bookings?amenityId=%d", amenity.ID), "alice", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var bookings []models.Booking
	json.Unmarshal(resp.Body.Bytes(), &bookings)

	if len(bookings) != 2 {
		t.Fatalf("Expected 2 bookings, got %d", len(bookings))
	}
	// Ordered by start time
	if !bookings[0].StartAt.Before(bookings[1].StartAt) {
		t.Error("Expected bookings ordered by start_at")
	}
}

func TestExportICS(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	amenity := createAmenity(t, db, 1, false)

	booking := models.Booking{
		CircleID:  1,
		AmenityID: amenity.ID,
		UserID:    "alice",
		StartAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC),
		Status:    models.BookingStatusApproved,
	}
	db.Create(&booking)

	req, _ := http.NewRequest("GET", fmt.Sprintf("/bookings/%d/ics", booking.ID), nil)
	req.Header.Set("Authorization", getAuthHeader("alice"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Expected text/calendar content type, got %s", ct)
	}

	body := resp.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "DTSTART:20250601T100000Z", "DTEND:20250601T113000Z", "END:VEVENT", "END:VCALENDAR"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected ICS output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestExportICSNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/bookings/999/ics", nil)
	req.Header.Set("Authorization", getAuthHeader("alice"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
