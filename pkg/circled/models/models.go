package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: Circle must be migrated first as other models depend on it
func AllModels() []interface{} {
	return []interface{}{
		&Circle{},
		&CircleHierarchy{},
		&CircleFeature{},
		&Membership{},
		&CircleEdge{},
		&Amenity{},
		&Booking{},
		&Promo{},
		&MenuItem{},
		&OrderHeader{},
		&OrderItem{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
