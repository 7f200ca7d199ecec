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

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// Create registers a member
// @Summary Create member
// @Tags Members
// @Accept json
// @Produce json
// @Param body body services.CreateMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var input services.CreateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if input.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	member, err := h.memberService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "Email is already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid membership status")
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Get gets a member by ID
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "", fiber.Map{
		"member": member.ToResponse(),
	})
}

// List lists members with pagination
// @Summary List members
// @Tags Members
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	items := make([]interface{}, 0, len(members))
	for _, member := range members {
		items = append(items, member.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"members": items,
		"meta":    pagination.GetMeta(params, total),
	})
}

// Search finds members by name or email
// @Summary Search members
// @Tags Members
// @Produce json
// @Param q query string true "Name or email contains"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members/search [get]
func (h *MemberHandler) Search(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return response.BadRequest(c, "Search term is required")
	}

	members, err := h.memberService.Search(c.Context(), term)
	if err != nil {
		return response.InternalServerError(c, "Failed to search members")
	}

	items := make([]interface{}, 0, len(members))
	for _, member := range members {
		items = append(items, member.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"members": items,
	})
}

// GetByEmail gets a member by email
// @Summary Get member by email
// @Tags Members
// @Produce json
// @Param email path string true "Member email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/email/{email} [get]
func (h *MemberHandler) GetByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return response.BadRequest(c, "Email is required")
	}

	member, err := h.memberService.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Summary reports a member with loan and fine totals
// @Summary Member summary
// @Description Member profile with active loan count and outstanding fines
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/summary [get]
func (h *MemberHandler) Summary(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	summary, err := h.memberService.Summary(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to load member summary")
	}

	return response.Success(c, "", fiber.Map{
		"summary": summary,
	})
}

// Update patches member fields
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body services.UpdateMemberInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	var input services.UpdateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "Email is already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid membership status")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Delete removes a member
// @Summary Delete member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.Conflict(c, "Member still has active loans")
		default:
			return response.InternalServerError(c, "Failed to delete member")
		}
	}

	return response.Success(c, "Member deleted successfully", nil)
}
