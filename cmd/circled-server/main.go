package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/localconnector/circled/pkg/circled/amenities"
	"github.com/localconnector/circled/pkg/circled/auth"
	"github.com/localconnector/circled/pkg/circled/bookings"
	"github.com/localconnector/circled/pkg/circled/circles"
	"github.com/localconnector/circled/pkg/circled/database"
	"github.com/localconnector/circled/pkg/circled/edges"
	"github.com/localconnector/circled/pkg/circled/guard"
	"github.com/localconnector/circled/pkg/circled/models"
	"github.com/localconnector/circled/pkg/circled/orders"
	"github.com/localconnector/circled/pkg/circled/promos"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/localconnector/circled/api/swagger"
)

// @title Circled API
// @version 1.0
// @description Community circle graph with amenity scheduling, cross-circle promotions and ordering.

// @contact.name Circled Support
// @contact.url https://github.com/localconnector/circled

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("CIRCLED_DB_PATH")
	if dbPath == "" {
		dbPath = "circled.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Seed demo data unless disabled
	if os.Getenv("CIRCLED_SEED_DEMO") != "false" {
		if err := seedDemoData(database.GetDB()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	db := database.GetDB()
	crossCircleGuard := guard.New(db)

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "circled",
			})
		})

		// All remaining routes require a bearer token
		protected := api.Group("", auth.AuthMiddleware())

		// Circle registry, features, hierarchy and members
		circlesHandler := circles.NewHandler(db)
		circlesGroup := protected.Group("/circles")
		circlesHandler.RegisterRoutes(circlesGroup)
		circlesHandler.RegisterMemberRoutes(circlesGroup)

		// Circle-to-circle edges (mounted under /circles so URLs read
		// as relations between circles)
		edgesHandler := edges.NewHandler(db)
		edgesHandler.RegisterRoutes(circlesGroup)

		// Amenity catalog
		amenitiesHandler := amenities.NewHandler(db)
		amenitiesHandler.RegisterRoutes(protected)

		// Bookings (guard enforces cross-circle PLACE_RESERVATION)
		bookingsHandler := bookings.NewHandler(db, crossCircleGuard)
		bookingsHandler.RegisterRoutes(protected)

		// Promotions (guard enforces cross-circle VIEW_PROMOS)
		promosHandler := promos.NewHandler(db, crossCircleGuard)
		promosHandler.RegisterRoutes(protected)

		// Menu and orders (guard enforces cross-circle PLACE_ORDER)
		ordersHandler := orders.NewHandler(db, crossCircleGuard)
		ordersHandler.RegisterRoutes(protected)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Circled server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedDemoData populates a fresh database with a small demo neighborhood:
// an apartment community with a sub-building and amenities, a hotel with a
// menu, a community hub, a merchant with promos, and a personal circle.
// A database that already has circles is left untouched.
func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Circle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		radius := 2.0
		oakwood := models.Circle{
			OwnerUserID: "superadmin",
			Name:        "Oakwood Apartments",
			Type:        "APARTMENT",
			RadiusMiles: &radius,
			Policies:    `{"verifiedOnly":true}`,
		}
		if err := tx.Create(&oakwood).Error; err != nil {
			return err
		}
		for _, key := range []string{
			"RESERVATIONS", "INCIDENTS", "ANNOUNCEMENTS", "EVENTS", "POLLS",
			"DIRECTORY", "GUEST_PASSES", "TASKBOARD", "CHAT", "ANALYTICS",
		} {
			if err := tx.Create(&models.CircleFeature{CircleID: oakwood.ID, FeatureKey: key, Enabled: true}).Error; err != nil {
				return err
			}
		}

		buildingA := models.Circle{OwnerUserID: "oakwood_admin", Name: "Building A", Type: "SUB"}
		if err := tx.Create(&buildingA).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CircleHierarchy{ParentID: oakwood.ID, ChildID: buildingA.ID}).Error; err != nil {
			return err
		}

		riverInn := models.Circle{OwnerUserID: "river_staff", Name: "River Inn Hotel", Type: "HOTEL"}
		if err := tx.Create(&riverInn).Error; err != nil {
			return err
		}
		for _, key := range []string{"RESERVATIONS", "ORDERS", "ANNOUNCEMENTS", "PAYMENTS"} {
			if err := tx.Create(&models.CircleFeature{CircleID: riverInn.ID, FeatureKey: key, Enabled: true}).Error; err != nil {
				return err
			}
		}

		plano := models.Circle{OwnerUserID: "organizer", Name: "Plano Community Hub", Type: "COMMUNITY"}
		if err := tx.Create(&plano).Error; err != nil {
			return err
		}
		for _, key := range []string{"ANNOUNCEMENTS", "EVENTS", "POLLS", "PROMOTIONS", "RESERVATIONS"} {
			if err := tx.Create(&models.CircleFeature{CircleID: plano.ID, FeatureKey: key, Enabled: true}).Error; err != nil {
				return err
			}
		}

		seven := models.Circle{OwnerUserID: "merchant_admin", Name: "7-Seven Market", Type: "MERCHANT"}
		if err := tx.Create(&seven).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CircleFeature{CircleID: seven.ID, FeatureKey: "PROMOTIONS", Enabled: true}).Error; err != nil {
			return err
		}

		personal := models.Circle{OwnerUserID: "you", Name: "Anish's Local Help", Type: "PERSONAL"}
		if err := tx.Create(&personal).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CircleFeature{CircleID: personal.ID, FeatureKey: "TASKBOARD", Enabled: true}).Error; err != nil {
			return err
		}

		// Demo edges: residents of Oakwood can see and use the hotel,
		// and can browse the market's promos.
		demoEdges := []models.CircleEdge{
			{
				FromCircleID:   oakwood.ID,
				ToCircleID:     riverInn.ID,
				AllowedActions: models.EncodeActions([]string{"VIEW_PROMOS", "PLACE_RESERVATION", "PLACE_ORDER"}),
				Status:         models.EdgeStatusActive,
			},
			{
				FromCircleID:   oakwood.ID,
				ToCircleID:     seven.ID,
				AllowedActions: models.EncodeActions([]string{"VIEW_PROMOS"}),
				Status:         models.EdgeStatusActive,
			},
		}
		for i := range demoEdges {
			if err := tx.Create(&demoEdges[i]).Error; err != nil {
				return err
			}
		}

		// Bookable amenities for Oakwood
		demoAmenities := []models.Amenity{
			{
				CircleID:                oakwood.ID,
				Name:                    "Gym",
				Hours:                   "{}",
				Capacity:                30,
				ApprovalRequired:        false,
				SlotLengthMins:          60,
				CancellationWindowHours: 1,
			},
			{
				CircleID:                oakwood.ID,
				Name:                    "Rooftop",
				Hours:                   "{}",
				Capacity:                50,
				ApprovalRequired:        true,
				SlotLengthMins:          120,
				CancellationWindowHours: 2,
			},
		}
		for i := range demoAmenities {
			if err := tx.Create(&demoAmenities[i]).Error; err != nil {
				return err
			}
		}

		// Menu for River Inn
		demoMenu := []models.MenuItem{
			{CircleID: riverInn.ID, Title: "Club Sandwich", Description: "Fresh", PriceCents: 1099, Active: true},
			{CircleID: riverInn.ID, Title: "Caesar Salad", Description: "Crisp", PriceCents: 899, Active: true},
		}
		for i := range demoMenu {
			if err := tx.Create(&demoMenu[i]).Error; err != nil {
				return err
			}
		}

		// Promos for the market
		demoPromos := []models.Promo{
			{CircleID: seven.ID, Title: "2 for 1 Snacks", Body: "Today only", Active: true},
			{CircleID: seven.ID, Title: "Free Coffee 9-11am", Body: "Show app", Active: true},
		}
		for i := range demoPromos {
			if err := tx.Create(&demoPromos[i]).Error; err != nil {
				return err
			}
		}

		log.Println("Seeded demo circles, edges, amenities, menu and promos")
		return nil
	})
}
