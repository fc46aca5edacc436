// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/armanrma7/agronetixbeck-sub000/internal/config"
	"github.com/armanrma7/agronetixbeck-sub000/internal/handlers"
	"github.com/armanrma7/agronetixbeck-sub000/internal/middleware"
	"github.com/armanrma7/agronetixbeck-sub000/internal/services"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.ExpirySweeper) {
	// Initialize services
	catalogService := services.NewCatalogService(db)
	notificationService := services.NewNotificationService(db, catalogService)
	storageService, _ := services.NewStorageService(cfg)
	ledger := services.NewQuantityLedger(db)

	authService := services.NewAuthService(db, cfg)
	announcementService := services.NewAnnouncementService(db, cfg, ledger, notificationService, catalogService, storageService)
	applicationService := services.NewApplicationService(db, ledger, notificationService)
	sweeper := services.NewExpirySweeper(db, announcementService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService, applicationService, storageService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	adminHandler := handlers.NewAdminHandler(sweeper)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Announcement routes
		announcements := v1.Group("/announcements")
		{
			announcements.GET("", middleware.OptionalAuth(), announcementHandler.GetAnnouncements)
			announcements.GET("/mine", middleware.AuthRequired(), announcementHandler.GetMyAnnouncements)
			announcements.GET("/:id", middleware.OptionalAuth(), announcementHandler.GetAnnouncement)

			// Authenticated routes
			protected := announcements.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", middleware.SubmitRateLimit(), announcementHandler.CreateAnnouncement)
				protected.PUT("/:id", announcementHandler.UpdateAnnouncement)
				protected.DELETE("/:id", announcementHandler.DeleteAnnouncement)
				protected.POST("/:id/images", middleware.UploadRateLimit(), announcementHandler.UploadImages)
				protected.POST("/:id/view", announcementHandler.RecordView)
				protected.PUT("/:id/close", announcementHandler.CloseAnnouncement)
				protected.PUT("/:id/cancel", announcementHandler.CancelAnnouncement)
				protected.GET("/:id/applications", announcementHandler.GetAnnouncementApplications)

				// Admin-only transitions
				protected.PUT("/:id/publish", middleware.AdminRequired(), announcementHandler.PublishAnnouncement)
				protected.PUT("/:id/block", middleware.AdminRequired(), announcementHandler.BlockAnnouncement)
			}
		}

		// Application routes
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.POST("", middleware.SubmitRateLimit(), applicationHandler.CreateApplication)
			applications.GET("/mine", applicationHandler.GetMyApplications)
			applications.GET("/:id", applicationHandler.GetApplication)
			applications.PUT("/:id", applicationHandler.EditApplication)
			applications.PUT("/:id/approve", applicationHandler.ApproveApplication)
			applications.PUT("/:id/reject", applicationHandler.RejectApplication)
			applications.PUT("/:id/close", applicationHandler.CloseApplication)
			applications.PUT("/:id/reopen", applicationHandler.ReopenApplication)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/sweep", adminHandler.RunExpirySweep)
		}
	}

	return r, sweeper
}
