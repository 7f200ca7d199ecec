package routes

import (
	"libralend/internal/adapters/http/handlers"
	"libralend/internal/adapters/http/middleware"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/config"
	"libralend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, loanService *services.LoanService) {
	// Initialize repositories
	authorRepo := repositories.NewAuthorRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	// Initialize services
	eligibility := services.NewEligibilityChecker(loanRepo, cfg.Library)
	authorService := services.NewAuthorService(authorRepo)
	bookService := services.NewBookService(bookRepo, authorRepo)
	memberService := services.NewMemberService(memberRepo, loanRepo, eligibility)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authorHandler := handlers.NewAuthorHandler(authorService)
	bookHandler := handlers.NewBookHandler(bookService)
	memberHandler := handlers.NewMemberHandler(memberService)
	loanHandler := handlers.NewLoanHandler(loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, authorHandler, bookHandler, memberHandler, loanHandler)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	authorHandler *handlers.AuthorHandler,
	bookHandler *handlers.BookHandler,
	memberHandler *handlers.MemberHandler,
	loanHandler *handlers.LoanHandler,
) {
	// Author routes
	authors := router.Group("/authors")
	authors.Post("/", authorHandler.Create)
	authors.Get("/", authorHandler.List)
	authors.Get("/:id", authorHandler.Get)
	authors.Put("/:id", authorHandler.Update)
	authors.Delete("/:id", authorHandler.Delete)

	// Book routes
	books := router.Group("/books")
	books.Post("/", bookHandler.Create)
	books.Get("/", bookHandler.List)
	books.Get("/search", bookHandler.Search)
	books.Get("/available", bookHandler.ListAvailable)
	books.Get("/categories", bookHandler.ListCategories)
	books.Get("/:id", bookHandler.Get)
	books.Put("/:id", bookHandler.Update)
	books.Delete("/:id", bookHandler.Delete)

	// Member routes
	members := router.Group("/members")
	members.Post("/", memberHandler.Create)
	members.Get("/", memberHandler.List)
	members.Get("/search", memberHandler.Search)
	members.Get("/email/:email", memberHandler.GetByEmail)
	members.Get("/:id", memberHandler.Get)
	members.Get("/:id/summary", memberHandler.Summary)
	members.Get("/:id/fines", loanHandler.MemberFines)
	members.Put("/:id", memberHandler.Update)
	members.Delete("/:id", memberHandler.Delete)

	// Loan routes
	loans := router.Group("/loans")
	loans.Post("/", loanHandler.Borrow)
	loans.Get("/", loanHandler.List)
	loans.Get("/statistics", loanHandler.Statistics)
	loans.Get("/:id", loanHandler.Get)
	loans.Post("/:id/return", loanHandler.Return)
	loans.Post("/:id/extend", loanHandler.Extend)

	// Admin loan routes with a tighter rate limit
	loans.Post("/sweep", middleware.AdminRateLimiter(), loanHandler.Sweep)
	loans.Put("/:id", middleware.AdminRateLimiter(), loanHandler.AdminUpdate)
	loans.Delete("/:id", middleware.AdminRateLimiter(), loanHandler.Delete)
}
