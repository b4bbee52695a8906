package models

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"circles", "circle_hierarchies", "circle_features", "memberships", "circle_edges", "amenities", "bookings", "promos", "menu_items", "order_headers", "order_items"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestCircleModel(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	circle := Circle{
		OwnerUserID: "alice",
		Name:        "Oakwood Apartments",
		Type:        "APARTMENT",
	}

	result := db.Create(&circle)
	if result.Error != nil {
		t.Fatalf("Failed to create circle: %v", result.Error)
	}

	if circle.ID == 0 {
		t.Error("Expected circle ID to be set after create")
	}
}

func TestCircleFeatureUniqueIndex(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	f1 := CircleFeature{CircleID: 1, FeatureKey: "RESERVATIONS", Enabled: true}
	if err := db.Create(&f1).Error; err != nil {
		t.Fatalf("Failed to create feature: %v", err)
	}

	f2 := CircleFeature{CircleID: 1, FeatureKey: "RESERVATIONS", Enabled: false}
	if err := db.Create(&f2).Error; err == nil {
		t.Error("Expected unique constraint violation for duplicate (circle_id, feature_key)")
	}

	// Same key on a different circle is fine
	f3 := CircleFeature{CircleID: 2, FeatureKey: "RESERVATIONS", Enabled: true}
	if err := db.Create(&f3).Error; err != nil {
		t.Errorf("Expected feature on different circle to be allowed: %v", err)
	}
}

func TestEdgeAllowsAction(t *testing.T) {
	edge := CircleEdge{
		FromCircleID:   1,
		ToCircleID:     2,
		AllowedActions: EncodeActions([]string{"VIEW_PROMOS", "PLACE_ORDER"}),
		Status:         EdgeStatusActive,
	}

	if !edge.AllowsAction("PLACE_ORDER") {
		t.Error("Expected PLACE_ORDER to be allowed")
	}
	if !edge.AllowsAction("VIEW_PROMOS") {
		t.Error("Expected VIEW_PROMOS to be allowed")
	}
	if edge.AllowsAction("PLACE_RESERVATION") {
		t.Error("Expected PLACE_RESERVATION to be denied")
	}
	// Exact token membership, not substring containment
	if edge.AllowsAction("ORDER") {
		t.Error("Expected ORDER to be denied: it is a substring of a token, not a token")
	}
	if edge.AllowsAction("PLACE_ORDER_X") {
		t.Error("Expected PLACE_ORDER_X to be denied")
	}
}

func TestEdgeAllowsActionMalformedList(t *testing.T) {
	edge := CircleEdge{AllowedActions: "not json"}
	if edge.AllowsAction("PLACE_ORDER") {
		t.Error("Expected malformed allow-list to deny everything")
	}
}

func TestEncodeActionsNil(t *testing.T) {
	if got := EncodeActions(nil); got != "[]" {
		t.Errorf("Expected empty JSON array for nil actions, got %s", got)
	}
}

func TestBookingCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingStatusPending, BookingStatusApproved, true},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCanceled, true},
		{BookingStatusApproved, BookingStatusCanceled, true},
		{BookingStatusApproved, BookingStatusRejected, false},
		{BookingStatusApproved, BookingStatusApproved, false},
		{BookingStatusRejected, BookingStatusApproved, false},
		{BookingStatusRejected, BookingStatusCanceled, false},
		{BookingStatusCanceled, BookingStatusApproved, false},
		{BookingStatusCanceled, BookingStatusCanceled, false},
	}

	for _, tc := range cases {
		b := Booking{Status: tc.from}
		if got := b.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	at := func(mins int) time.Time { return base.Add(time.Duration(mins) * time.Minute) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(60), at(15), at(45), true},
		{"boundary touch does not conflict", at(0), at(60), at(60), at(120), false},
		{"boundary touch reversed", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(60), at(90), at(120), false},
	}

	for _, tc := range cases {
		if got := IntervalsOverlap(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Errorf("%s: IntervalsOverlap = %v, want %v", tc.name, got, tc.want)
		}
		// The predicate is symmetric
		if got := IntervalsOverlap(tc.s2, tc.e2, tc.s1, tc.e1); got != tc.want {
			t.Errorf("%s (swapped): IntervalsOverlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}
