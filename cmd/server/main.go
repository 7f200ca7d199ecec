package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"libralend/internal/adapters/http/middleware"
	"libralend/internal/adapters/http/routes"
	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/config"
	"libralend/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "libralend/docs" // Swagger docs
)

// @title LibraLend API
// @version 1.0
// @description Library lending API covering books, members, loans and fines
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@libralend.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed sample data in development mode
	if cfg.IsDev() {
		if err := config.SeedDevData(db); err != nil {
			log.Printf("⚠️ Warning: Failed to seed sample data: %v", err)
		}
	}

	// Wire the loan service once; the HTTP layer and the scheduler share it
	notifyService := services.NewNotificationService()
	loanService := services.NewLoanService(
		repositories.NewLoanRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewMemberRepository(db),
		repositories.NewGormTransactor(db),
		cfg.Library,
		notifyService,
	)

	// Start scheduled overdue sweep and due-soon reminders
	sweepService := services.NewSweepService(loanService, notifyService, cfg.Schedule)
	if err := sweepService.Start(); err != nil {
		log.Fatalf("❌ Failed to start scheduler: %v", err)
	}
	defer sweepService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LibraLend API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, loanService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
