package handlers

import (
	"errors"
	"strconv"
	"time"

	"libralend/internal/core/domain"
	"libralend/internal/core/services"
	"libralend/internal/pkg/pagination"
	"libralend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD value
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// BorrowRequest represents a borrow request
type BorrowRequest struct {
	BookID     uint   `json:"book_id"`
	MemberID   uint   `json:"member_id"`
	BorrowDate string `json:"borrow_date,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Borrow creates a new loan
// @Summary Borrow a book
// @Description Create a loan for a member, reserving one copy of the book
// @Tags Loans
// @Accept json
// @Produce json
// @Param body body BorrowRequest true "Borrow data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Borrow(c *fiber.Ctx) error {
	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	borrowDate, err := parseDate(req.BorrowDate)
	if err != nil {
		return response.BadRequest(c, "Invalid borrow_date, use YYYY-MM-DD")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return response.BadRequest(c, "Invalid due_date, use YYYY-MM-DD")
	}

	input := &services.BorrowInput{
		BookID:     req.BookID,
		MemberID:   req.MemberID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Notes:      req.Notes,
	}

	loan, err := h.loanService.Borrow(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrMemberNotActive):
			return response.Forbidden(c, "Member does not have an active membership")
		case errors.Is(err, domain.ErrNoCopiesAvailable):
			return response.Conflict(c, "No copies available for borrowing")
		case errors.Is(err, domain.ErrDuplicateLoan):
			return response.Conflict(c, "Member already has an active loan for this book")
		case errors.Is(err, domain.ErrBorrowLimitReached):
			return response.Conflict(c, "Member has reached the borrowing limit")
		case errors.Is(err, domain.ErrFineCeilingExceeded):
			return response.Conflict(c, "Member has outstanding fines above the allowed ceiling")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Due date must not be before borrow date")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Loan created successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Return closes a loan
// @Summary Return a book
// @Description Close an active loan, freeze its fine and release the copy
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Return(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.Conflict(c, "Loan has already been returned")
		case errors.Is(err, domain.ErrLoanNotActive):
			return response.Conflict(c, "Loan is not currently active")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Loan returned successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// ExtendRequest represents an extension request
type ExtendRequest struct {
	Days int `json:"days"`
}

// Extend pushes a loan's due date out
// @Summary Extend a loan
// @Description Extend an active loan's due date by a bounded number of days
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Param body body ExtendRequest true "Extension days"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/extend [post]
func (h *LoanHandler) Extend(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req ExtendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.ExtendDueDate(c.Context(), uint(id), req.Days)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidExtension):
			return response.BadRequest(c, "Extension days outside the allowed range")
		case errors.Is(err, domain.ErrLoanNotActive):
			return response.Conflict(c, "Loan is not currently active")
		default:
			return response.InternalServerError(c, "Failed to extend loan")
		}
	}

	return response.Success(c, "Loan extended successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Get gets a loan by ID
// @Summary Get loan
// @Description Get a loan with book and member details
// @Tags Loans
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// List lists loans
// @Summary List loans
// @Description List loans filtered by member, book, status or borrow-date range
// @Tags Loans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param member_id query int false "Filter by member ID"
// @Param book_id query int false "Filter by book ID"
// @Param status query string false "Filter by status"
// @Param from query string false "Borrowed from date (YYYY-MM-DD)"
// @Param to query string false "Borrowed to date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListInput{
		Page:  params.Page,
		Limit: params.Limit,
	}

	if v := c.QueryInt("member_id"); v > 0 {
		id := uint(v)
		input.MemberID = &id
	}
	if v := c.QueryInt("book_id"); v > 0 {
		id := uint(v)
		input.BookID = &id
	}
	if v := c.Query("status"); v != "" {
		input.Status = &v
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
	}
	input.BorrowedFrom = from

	to, err := parseDate(c.Query("to"))
	if err != nil {
		return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
	}
	input.BorrowedTo = to

	output, err := h.loanService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	loans := make([]interface{}, 0, len(output.Loans))
	for _, loan := range output.Loans {
		loans = append(loans, loan.ToResponse())
	}

	return response.Success(c, "", fiber.Map{
		"loans": loans,
		"meta":  pagination.GetMeta(params, output.Total),
	})
}

// AdminUpdateRequest represents an admin field-level update
type AdminUpdateRequest struct {
	BorrowDate *string  `json:"borrow_date,omitempty"`
	DueDate    *string  `json:"due_date,omitempty"`
	ReturnDate *string  `json:"return_date,omitempty"`
	Status     *string  `json:"status,omitempty"`
	FineAmount *float64 `json:"fine_amount,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// AdminUpdate patches loan fields (admin)
// @Summary Update loan (admin)
// @Description Field-level update of a loan record; the only path to LOST/DAMAGED
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Param body body AdminUpdateRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [put]
func (h *LoanHandler) AdminUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req AdminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.AdminUpdateInput{
		Status:     req.Status,
		FineAmount: req.FineAmount,
		Notes:      req.Notes,
	}

	if req.BorrowDate != nil {
		d, err := parseDate(*req.BorrowDate)
		if err != nil {
			return response.BadRequest(c, "Invalid borrow_date, use YYYY-MM-DD")
		}
		input.BorrowDate = d
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid due_date, use YYYY-MM-DD")
		}
		input.DueDate = d
	}
	if req.ReturnDate != nil {
		d, err := parseDate(*req.ReturnDate)
		if err != nil {
			return response.BadRequest(c, "Invalid return_date, use YYYY-MM-DD")
		}
		input.ReturnDate = d
	}

	loan, err := h.loanService.AdminUpdate(c.Context(), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid loan update")
		default:
			return response.InternalServerError(c, "Failed to update loan")
		}
	}

	return response.Success(c, "Loan updated successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Delete removes a loan record (admin)
// @Summary Delete loan (admin)
// @Description Remove a loan record; an active loan releases its copy first
// @Tags Loans
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

// MemberFines reports a member's outstanding fines
// @Summary Member outstanding fines
// @Description Sum of fines across all the member's loans, live for active ones
// @Tags Loans
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/fines [get]
func (h *LoanHandler) MemberFines(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	amount, err := h.loanService.MemberOutstandingFines(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to compute outstanding fines")
	}

	return response.Success(c, "", fiber.Map{
		"member_id":         uint(id),
		"outstanding_fines": amount,
	})
}

// Sweep triggers the overdue sweep (admin)
// @Summary Run overdue sweep (admin)
// @Description Reclassify past-due BORROWED loans to OVERDUE and refresh fines
// @Tags Loans
// @Produce json
// @Success 200 {object} response.Response
// @Router /loans/sweep [post]
func (h *LoanHandler) Sweep(c *fiber.Ctx) error {
	count, err := h.loanService.Sweep(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Overdue sweep failed")
	}

	return response.Success(c, "Overdue sweep completed", fiber.Map{
		"updated": count,
	})
}

// Statistics reports loan counts per status
// @Summary Loan statistics
// @Description Loan counts grouped by status
// @Tags Loans
// @Produce json
// @Success 200 {object} response.Response
// @Router /loans/statistics [get]
func (h *LoanHandler) Statistics(c *fiber.Ctx) error {
	counts, err := h.loanService.Statistics(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load statistics")
	}

	return response.Success(c, "", fiber.Map{
		"statistics": counts,
	})
}
