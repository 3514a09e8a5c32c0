// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/config"
	"github.com/tandatangan/katalog-backend/internal/handlers"
	"github.com/tandatangan/katalog-backend/internal/middleware"
	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	scanService := services.NewScanService(db)
	productService := services.NewProductService(db, storageService, scanService, cfg)
	reviewService := services.NewReviewService(db)
	makerService := services.NewMakerService(db, storageService)
	authService := services.NewAuthService(db, cfg)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	publicHandler := handlers.NewPublicHandler(productService, reviewService)
	productHandler := handlers.NewProductHandler(productService, scanService, storageService)
	makerHandler := handlers.NewMakerHandler(makerService, storageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	authHandler := handlers.NewAuthHandler(authService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Public product pages, reached via QR scans. Each route resolves
	// the unique code independently and records its own scan event.
	public := r.Group("/product")
	public.Use(middleware.PublicRateLimit())
	{
		public.GET("/:code", publicHandler.ShowProduct)
		public.GET("/:code/story", publicHandler.ShowStory)
		public.GET("/:code/gallery", publicHandler.ShowGallery)
		public.GET("/:code/maker", publicHandler.ShowMaker)
		public.GET("/:code/reviews", publicHandler.ShowReviews)
		public.GET("/:code/scan-success", publicHandler.ScanSuccess)
		public.POST("/:code/reviews", publicHandler.SubmitReview)
	}

	// QR artifact serving
	qr := r.Group("/qr")
	{
		qr.GET("/:id", productHandler.ServeQR)
		qr.GET("/:id/download", productHandler.DownloadQR)
	}

	// API v1 routes (admin surface)
	v1 := r.Group("/v1")
	v1.Use(middleware.GeneralRateLimit())
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
		}

		admin := v1.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			makers := admin.Group("/makers")
			{
				makers.GET("", makerHandler.ListMakers)
				makers.POST("", makerHandler.CreateMaker)
				makers.GET("/:id", makerHandler.GetMaker)
				makers.PUT("/:id", makerHandler.UpdateMaker)
				makers.DELETE("/:id", makerHandler.DeleteMaker)
			}

			products := admin.Group("/products")
			{
				products.GET("", productHandler.ListProducts)
				products.POST("", productHandler.CreateProduct)
				products.GET("/:id", productHandler.GetProduct)
				products.PUT("/:id", productHandler.UpdateProduct)
				products.DELETE("/:id", productHandler.DeleteProduct)
				products.POST("/:id/regenerate-qr", productHandler.RegenerateQR)
				products.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadImages)
			}

			admin.DELETE("/images/:id", productHandler.DeleteImage)
			admin.POST("/uploads", middleware.UploadRateLimit(), makerHandler.Upload)

			reviews := admin.Group("/reviews")
			{
				reviews.GET("", reviewHandler.ListReviews)
				reviews.PATCH("/:id/approve", reviewHandler.ApproveReview)
				reviews.PATCH("/:id/reject", reviewHandler.RejectReview)
				reviews.POST("/bulk-approve", reviewHandler.BulkApprove)
				reviews.POST("/bulk-reject", reviewHandler.BulkReject)
			}

			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", dashboardHandler.GetStats)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", cfg.App.UploadsDir)
	}

	return r, nil
}
