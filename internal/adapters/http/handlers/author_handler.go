package handlers

import (
	"errors"
	"strconv"

	"libralend/internal/core/domain"
	"libralend/internal/core/services"
	"libralend/internal/pkg/pagination"
	"libralend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorHandler handles author endpoints
type AuthorHandler struct {
	authorService *services.AuthorService
}

// NewAuthorHandler creates a new author handler
func NewAuthorHandler(authorService *services.AuthorService) *AuthorHandler {
	return &AuthorHandler{
		authorService: authorService,
	}
}

// Create creates an author
// @Summary Create author
// @Tags Authors
// @Accept json
// @Produce json
// @Param body body services.CreateAuthorInput true "Author data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /authors [post]
func (h *AuthorHandler) Create(c *fiber.Ctx) error {
	var input services.CreateAuthorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	author, err := h.authorService.Create(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create author")
	}

	return response.Created(c, "Author created successfully", fiber.Map{
		"author": author.ToResponse(),
	})
}

// Get gets an author by ID
// @Summary Get author
// @Tags Authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /authors/{id} [get]
func (h *AuthorHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid author ID")
	}

	author, err := h.authorService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			return response.NotFound(c, "Author not found")
		}
		return response.InternalServerError(c, "Failed to get author")
	}

	return response.Success(c, "", fiber.Map{
		"author": author.ToResponse(),
	})
}

// List lists authors with pagination
// @Summary List authors
// @Tags Authors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /authors [get]
func (h *AuthorHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	authors, total, err := h.authorService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list authors")
	}

	items := make([]interface{}, 0, len(authors))
	for _, author := range authors {
		items = append(items, author.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"authors": items,
		"meta":    pagination.GetMeta(params, total),
	})
}

// Update patches author fields
// @Summary Update author
// @Tags Authors
// @Accept json
// @Produce json
// @Param id path int true "Author ID"
// @Param body body services.UpdateAuthorInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /authors/{id} [put]
func (h *AuthorHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid author ID")
	}

	var input services.UpdateAuthorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	author, err := h.authorService.Update(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			return response.NotFound(c, "Author not found")
		}
		return response.InternalServerError(c, "Failed to update author")
	}

	return response.Success(c, "Author updated successfully", fiber.Map{
		"author": author.ToResponse(),
	})
}

// Delete removes an author
// @Summary Delete author
// @Tags Authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /authors/{id} [delete]
func (h *AuthorHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid author ID")
	}

	if err := h.authorService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			return response.NotFound(c, "Author not found")
		}
		return response.InternalServerError(c, "Failed to delete author")
	}

	return response.Success(c, "Author deleted successfully", nil)
}
