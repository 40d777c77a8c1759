package main

import (
	"fmt"
	"net/http"
	"os"

	"creditmax/internal/config"
	"creditmax/internal/database"
	"creditmax/internal/gemini"
	"creditmax/internal/handlers"
	"creditmax/internal/logger"
	"creditmax/internal/middleware"
	"creditmax/internal/services"
	"creditmax/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "creditmax/internal/docs" // Import swagger docs
)

// @title           CreditMax API
// @version         1.0
// @description     CreditMax tracks credit cards, their benefits and credits, subscriptions, and AI service usage quotas, so nothing you pay for goes unused.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	cardService := services.NewCardService(db)
	benefitService := services.NewBenefitService(db)
	subscriptionService := services.NewSubscriptionService(db)
	aiUsageService := services.NewAIUsageService(db)
	auditService := services.NewAuditService(db)
	dashboardService := services.NewDashboardService(cardService, subscriptionService, aiUsageService)
	backupService := services.NewBackupService(db, cardService, subscriptionService, aiUsageService)

	geminiClient := gemini.NewClient(appConfig.GeminiAPIKey, nil)
	if appConfig.GeminiBaseURL != "" {
		geminiClient.SetBaseURL(appConfig.GeminiBaseURL)
	}
	advisorService := services.NewAdvisorService(geminiClient, cardService, subscriptionService, aiUsageService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	benefitHandler := handlers.NewBenefitHandler(benefitService, auditService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, auditService)
	aiUsageHandler := handlers.NewAIUsageHandler(aiUsageService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	advisorHandler := handlers.NewAdvisorHandler(advisorService, auditService)
	settingsHandler := handlers.NewSettingsHandler(backupService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Card routes
	cards := protected.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.ListCards)
	cards.GET("/:id", cardHandler.GetCard)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)
	cards.POST("/:id/benefits", benefitHandler.AddBenefit)
	cards.POST("/:id/refresh-benefits", advisorHandler.RefreshBenefits)

	// Benefit routes
	benefits := protected.Group("/benefits")
	benefits.PUT("/:id", benefitHandler.UpdateBenefit)
	benefits.DELETE("/:id", benefitHandler.DeleteBenefit)
	benefits.PUT("/:id/usage", benefitHandler.UpdateUsage)
	benefits.POST("/:id/toggle", benefitHandler.ToggleRedeemed)
	benefits.PUT("/:id/hidden", benefitHandler.SetHidden)

	// Subscription routes
	subscriptions := protected.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.ListSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)

	// AI usage routes
	aiItems := protected.Group("/ai-items")
	aiItems.POST("", aiUsageHandler.CreateItem)
	aiItems.GET("", aiUsageHandler.ListItems)
	aiItems.GET("/:id", aiUsageHandler.GetItem)
	aiItems.PUT("/:id", aiUsageHandler.UpdateItem)
	aiItems.DELETE("/:id", aiUsageHandler.DeleteItem)
	aiItems.PUT("/:id/usage", aiUsageHandler.UpdateUsage)
	aiItems.POST("/:id/move", aiUsageHandler.MoveItem)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/card-stats", dashboardHandler.GetCardStats)
	dashboard.GET("/expiring", dashboardHandler.GetExpiring)
	dashboard.GET("/renewals", dashboardHandler.GetRenewals)
	dashboard.GET("/ai-alerts", dashboardHandler.GetAIAlerts)
	dashboard.GET("/points", dashboardHandler.GetPoints)
	dashboard.GET("/perks", dashboardHandler.GetPerks)

	// Advisor routes
	advisor := protected.Group("/advisor")
	advisor.POST("/analyze", advisorHandler.AnalyzeWallet)

	// Settings routes
	settings := protected.Group("/settings")
	settings.GET("/export", settingsHandler.ExportData)
	settings.POST("/import", settingsHandler.ImportData)

	log.Infof("Starting CreditMax backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
