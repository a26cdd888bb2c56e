package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/api/handlers"
	"github.com/retail-lens/backend/internal/ingestion"
	"github.com/retail-lens/backend/internal/metrics"
	"github.com/retail-lens/backend/internal/middleware/ratelimit"
	"github.com/retail-lens/backend/internal/middleware/validation"
	"github.com/retail-lens/backend/internal/storage/scratch"
	"github.com/retail-lens/backend/internal/storage/sqlite"
	"github.com/retail-lens/backend/pkg/config"
	appLogger "github.com/retail-lens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Retail Lens API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.History.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	scratchStore, err := scratch.NewStore(cfg.Storage.ScratchDir)
	if err != nil {
		appLogger.Fatal("Failed to create scratch store", zap.Error(err))
	}

	cleaner := ingestion.NewCleaner(cfg.Cleaning.FuzzyThreshold, cfg.Cleaning.EncodingSampleSize)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	analysisHandler := handlers.NewAnalysisHandler(cleaner, scratchStore, sqliteClient, cfg.Analysis)
	historyHandler := handlers.NewHistoryHandler(sqliteClient)

	api := app.Group("/api/v1")

	// Every analysis endpoint accepts a multipart CSV upload and
	// reprocesses it from scratch; uploads are validated before staging.
	analysis := api.Group("/", validation.Middleware(validation.Config{
		MaxUploadSize:     int64(cfg.Server.BodyLimit),
		AllowedExtensions: []string{".csv", ".txt"},
		Logger:            appLogger.Log,
	}))

	analysis.Post("/upload_csv", analysisHandler.UploadCSV)
	analysis.Post("/rfm_analysis", analysisHandler.RFMAnalysis)
	analysis.Post("/train_model", analysisHandler.TrainModel)
	analysis.Post("/churn_prediction", analysisHandler.ChurnPrediction)
	analysis.Post("/repurchase_prediction", analysisHandler.RepurchasePrediction)
	analysis.Post("/customer_lifetime_value", analysisHandler.CustomerLifetimeValue)
	analysis.Post("/product_affinity", analysisHandler.ProductAffinity)
	analysis.Post("/sentiment_analysis", analysisHandler.SentimentAnalysis)
	analysis.Post("/inventory_turnover", analysisHandler.InventoryTurnover)
	analysis.Post("/discount_impact", analysisHandler.DiscountImpact)
	analysis.Post("/monthly_revenue", analysisHandler.MonthlyRevenue)
	analysis.Post("/daily_revenue", analysisHandler.DailyRevenue)
	analysis.Post("/top_customers", analysisHandler.TopCustomers)
	analysis.Post("/top_products", analysisHandler.TopProducts)
	analysis.Post("/monthly_customer_acquisition", analysisHandler.MonthlyCustomerAcquisition)
	analysis.Post("/geographical_analysis", analysisHandler.GeographicalAnalysis)
	analysis.Post("/product_return_rate", analysisHandler.ProductReturnRate)
	analysis.Post("/customer_activity_heatmap", analysisHandler.CustomerActivityHeatmap)
	analysis.Post("/seasonality_analysis", analysisHandler.SeasonalityAnalysis)
	analysis.Post("/retention_rate", analysisHandler.RetentionRate)
	analysis.Post("/sales_drop_analysis", analysisHandler.SalesDropAnalysis)
	analysis.Post("/marketing_recommendations", analysisHandler.MarketingRecommendations)

	api.Get("/history", historyHandler.GetHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
