package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/khush256/SMRide-backend/database"
	"github.com/khush256/SMRide-backend/internal/models"
	"github.com/khush256/SMRide-backend/internal/routes"
	"github.com/khush256/SMRide-backend/internal/services"
	"github.com/khush256/SMRide-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.AcceptedRide{},
			&models.RideRequest{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	// SMS delivery is optional: without Twilio credentials (or with
	// SMS_ENABLED unset) the OTP is only returned in the response body.
	var sms *services.TwilioService
	if os.Getenv("SMS_ENABLED") == "true" {
		var err error
		sms, err = services.NewTwilioService()
		if err != nil {
			log.Fatal("Failed to initialize Twilio service:", err)
		}
		log.Println("✅ Twilio service initialized")
	} else {
		log.Println("⚠️  SMS delivery disabled - OTPs are returned in the API response only")
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "SMRide Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Service banner with storage status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service": "SMRide Backend API",
			"version": "1.0.0",
			"status":  "healthy",
			"storage": storageType(),
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			var userCount, rideCount, requestCount int64
			database.DB.Model(&models.User{}).Count(&userCount)
			database.DB.Model(&models.AcceptedRide{}).Count(&rideCount)
			database.DB.Model(&models.RideRequest{}).Count(&requestCount)

			response["database"] = fiber.Map{
				"users":         userCount,
				"acceptedRides": rideCount,
				"requests":      requestCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
				"sms":      sms != nil,
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, sms)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 SMRide Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Printf("📱 SMS delivery: %s", smsStatus(sms))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func storageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func smsStatus(sms *services.TwilioService) string {
	if sms == nil {
		return "Disabled"
	}
	return "Twilio"
}
