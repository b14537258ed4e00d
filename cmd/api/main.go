package main

import (
	"fmt"
	"net/http"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fintrack/internal/docs" // Import swagger docs
)

// @title           Fintrack API
// @version         1.0
// @description     Fintrack is a multi-tenant finance tracker that lets organizations categorize transactions, track assets and liabilities, and project progress toward financial goals.
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

	// Register custom validation tags used by request bindings
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	assetService := services.NewAssetService(db)
	liabilityService := services.NewLiabilityService(db)
	goalService := services.NewGoalService(db, assetService, liabilityService, transactionService)
	organizationService := services.NewOrganizationService(db, categoryService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	organizationHandler := handlers.NewOrganizationHandler(organizationService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	assetHandler := handlers.NewAssetHandler(assetService, auditService)
	liabilityHandler := handlers.NewLiabilityHandler(liabilityService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)

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

	// Organization management
	protected.POST("/organizations", organizationHandler.CreateOrganization)
	protected.GET("/organizations", organizationHandler.GetOrganizations)
	protected.POST("/invitations/accept", organizationHandler.AcceptInvitation)

	// Organization-scoped routes; every route below requires membership
	org := protected.Group("/organizations/:orgID")
	org.Use(middleware.RequireMember(db))

	org.GET("", organizationHandler.GetOrganization)
	org.GET("/members", organizationHandler.GetMembers)
	org.DELETE("/members/:userID", middleware.RequireRole(models.MemberRoleAdmin), organizationHandler.RemoveMember)
	org.POST("/invitations", middleware.RequireRole(models.MemberRoleAdmin), organizationHandler.InviteMember)
	org.GET("/invitations", middleware.RequireRole(models.MemberRoleAdmin), organizationHandler.GetInvitations)
	org.DELETE("/invitations/:id", middleware.RequireRole(models.MemberRoleAdmin), organizationHandler.RevokeInvitation)

	// Category routes
	categories := org.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/tree", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := org.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Asset routes
	assets := org.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetAssets)
	assets.GET("/:id", assetHandler.GetAsset)
	assets.PUT("/:id/value", assetHandler.UpdateAssetValue)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	// Liability routes
	liabilities := org.Group("/liabilities")
	liabilities.POST("", liabilityHandler.CreateLiability)
	liabilities.GET("", liabilityHandler.GetLiabilities)
	liabilities.GET("/:id", liabilityHandler.GetLiability)
	liabilities.PUT("/:id/amount", liabilityHandler.UpdateLiabilityAmount)
	liabilities.DELETE("/:id", liabilityHandler.DeleteLiability)

	// Goal routes
	goals := org.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/:id/progress", goalHandler.GetGoalProgress)
	goals.POST("/:id/recalculate", goalHandler.RecalculateGoalProgress)

	log.Infof("Starting Fintrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
