package handlers

import (
	"errors"
	"strconv"

	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/core/domain"
	"libralend/internal/core/services"
	"libralend/internal/pkg/pagination"
	"libralend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// Create creates a book
// @Summary Create book
// @Description Register a book title; copies start fully available
// @Tags Books
// @Accept json
// @Produce json
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if input.AuthorID == 0 {
		return response.BadRequest(c, "Author ID is required")
	}

	book, err := h.bookService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			return response.NotFound(c, "Author not found")
		}
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// Get gets a book by ID
// @Summary Get book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "", fiber.Map{
		"book": book.ToResponse(),
	})
}

// List lists books with pagination
// @Summary List books
// @Tags Books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	items := make([]interface{}, 0, len(books))
	for _, book := range books {
		items = append(items, book.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"books": items,
		"meta":  pagination.GetMeta(params, total),
	})
}

// Search searches books by title, category, author name or year
// @Summary Search books
// @Tags Books
// @Produce json
// @Param title query string false "Title contains"
// @Param category query string false "Category contains"
// @Param author query string false "Author name contains"
// @Param year query int false "Publishing year"
// @Success 200 {object} response.Response
// @Router /books/search [get]
func (h *BookHandler) Search(c *fiber.Ctx) error {
	filter := &repositories.BookSearchFilter{
		Title:          c.Query("title"),
		Category:       c.Query("category"),
		AuthorName:     c.Query("author"),
		PublishingYear: c.QueryInt("year"),
	}

	books, err := h.bookService.Search(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to search books")
	}

	items := make([]interface{}, 0, len(books))
	for _, book := range books {
		items = append(items, book.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"books": items,
	})
}

// ListAvailable lists books with at least one available copy
// @Summary List available books
// @Tags Books
// @Produce json
// @Success 200 {object} response.Response
// @Router /books/available [get]
func (h *BookHandler) ListAvailable(c *fiber.Ctx) error {
	books, err := h.bookService.ListAvailable(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list available books")
	}

	items := make([]interface{}, 0, len(books))
	for _, book := range books {
		items = append(items, book.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"books": items,
	})
}

// ListCategories lists distinct book categories
// @Summary List categories
// @Tags Books
// @Produce json
// @Success 200 {object} response.Response
// @Router /books/categories [get]
func (h *BookHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.bookService.ListCategories(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}

	return response.Success(c, "", fiber.Map{
		"categories": categories,
	})
}

// Update patches book fields
// @Summary Update book
// @Description Update book fields; changing total copies adjusts availability
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param body body services.UpdateBookInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrAuthorNotFound):
			return response.NotFound(c, "Author not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Copy counts conflict with outstanding loans")
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// Delete removes a book
// @Summary Delete book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
