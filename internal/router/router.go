package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rapidpost/backend/internal/handlers"
	"github.com/rapidpost/backend/internal/middleware"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/realtime"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/rapidpost/backend/internal/services"
	"github.com/rapidpost/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// Services groups the long-lived services built during route setup so main
// can schedule background work against them.
type Services struct {
	Notifications *services.NotificationService
	Cleanup       *services.NotificationCleanupService
	Push          *services.PushService
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, hub *realtime.Hub) *Services {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Notification{},
		&models.NotificationPreferences{},
		&models.PushSubscription{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mgdb := mgClient.Database(cfg.MongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	blogRepo := repositories.NewMongoBlogRepository(mgdb)
	reviewRepo := repositories.NewMongoReviewRepository(mgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	preferenceRepo := repositories.NewPostgresPreferenceRepository(pgdb)
	pushSubscriptionRepo := repositories.NewPostgresPushSubscriptionRepository(pgdb)

	// --- Initialize Services ---
	pushService := services.NewPushService(pushSubscriptionRepo, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, preferenceRepo, blogRepo, pushService, hub)
	cleanupService := services.NewNotificationCleanupService(notificationRepo)

	// WebSocket endpoint; clients authenticate over the socket itself
	e.GET("/ws", realtime.ServeWS(hub))
	log.Println("WebSocket endpoint configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo, blogRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User profile routes configured.")

	// Blog routes
	blogHandler := handlers.NewBlogHandler(blogRepo, reviewRepo, userRepo, followRepo, notificationService, hub)
	blogHandler.RegisterBlogRoutes(api)
	log.Println("Blog routes configured.")

	// Review routes
	reviewHandler := handlers.NewReviewHandler(reviewRepo, blogRepo, userRepo, notificationService, hub)
	reviewHandler.RegisterReviewRoutes(api)
	log.Println("Review routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(blogRepo, userRepo, notificationService)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationService)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Notification preference routes
	preferenceHandler := handlers.NewPreferenceHandler(preferenceRepo)
	preferenceHandler.RegisterPreferenceRoutes(api)
	log.Println("Notification preference routes configured.")

	// Push subscription routes
	pushHandler := handlers.NewPushHandler(pushService)
	pushHandler.RegisterPushRoutes(api)
	log.Println("Push subscription routes configured.")

	return &Services{
		Notifications: notificationService,
		Cleanup:       cleanupService,
		Push:          pushService,
	}
}
