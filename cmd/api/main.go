package main

import (
	"fmt"
	"net/http"
	"os"

	"immoledger/internal/config"
	"immoledger/internal/database"
	"immoledger/internal/handlers"
	"immoledger/internal/heating"
	"immoledger/internal/logger"
	"immoledger/internal/middleware"
	"immoledger/internal/services"
	"immoledger/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "immoledger/internal/docs" // Import swagger docs
)

// @title           Immoledger API
// @version         1.0
// @description     Immoledger is the financial core of a property management system: transaction-to-obligation reconciliation, FIFO tax lot tracking, and operating cost distribution.

// @host      localhost:8080
// @BasePath  /api/v1

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

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	heatingClient := heating.NewClient(appConfig.HeatingServiceURL, appConfig.HeatingServiceTimeout)
	linkerService := services.NewLinkerService(db)
	syncService := services.NewSyncService(db)
	taxLotService := services.NewTaxLotService(db)
	costShareService := services.NewCostShareService(db, heatingClient)

	// Initialize handlers
	linkerHandler := handlers.NewLinkerHandler(linkerService, appConfig.BatchDeadline)
	syncHandler := handlers.NewSyncHandler(syncService, appConfig.BatchDeadline)
	taxLotHandler := handlers.NewTaxLotHandler(taxLotService)
	costShareHandler := handlers.NewCostShareHandler(costShareService)

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

	// Transaction linking routes
	transactions := v1.Group("/transactions")
	transactions.GET("", linkerHandler.GetTransactions)
	transactions.POST("/bulk-allocate", linkerHandler.BulkAllocate)
	transactions.POST("/:id/reconcile", linkerHandler.Reconcile)

	// Ledger sweep routes
	ledger := v1.Group("/ledger")
	ledger.POST("/sync", syncHandler.Sync)

	// Tax lot engine routes
	tax := v1.Group("/tax")
	tax.POST("/transactions/:id/lots", taxLotHandler.CalculateTaxLots)
	tax.GET("/lots", taxLotHandler.GetTaxLots)
	tax.GET("/events", taxLotHandler.GetTaxEvents)

	// Cost distribution routes
	statements := v1.Group("/statements")
	statements.POST("/:id/tenant-share", costShareHandler.CalculateTenantShare)
	statements.GET("/:id/results", costShareHandler.GetStatementResults)

	log.Infof("Starting Immoledger backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
