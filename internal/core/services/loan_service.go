package services

import (
	"context"
	"errors"
	"log"
	"time"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/config"
	"libralend/internal/core/domain"

	"github.com/google/uuid"
)

// LoanService drives the lending lifecycle: it creates, returns,
// extends, reclassifies and removes loans, keeping book inventory
// consistent with loan state.
type LoanService struct {
	loanRepo    repositories.LoanRepository
	bookRepo    repositories.BookRepository
	memberRepo  repositories.MemberRepository
	tx          repositories.Transactor
	eligibility *EligibilityChecker
	fines       domain.FineCalculator
	cfg         config.LibraryConfig
	notify      *NotificationService
	now         func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	bookRepo repositories.BookRepository,
	memberRepo repositories.MemberRepository,
	tx repositories.Transactor,
	cfg config.LibraryConfig,
	notify *NotificationService,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		bookRepo:    bookRepo,
		memberRepo:  memberRepo,
		tx:          tx,
		eligibility: NewEligibilityChecker(loanRepo, cfg),
		fines: domain.FineCalculator{
			GracePeriodDays: cfg.GracePeriodDays,
			FinePerDay:      cfg.FinePerDay,
		},
		cfg:    cfg,
		notify: notify,
		now:    time.Now,
	}
}

// BorrowInput represents borrow input
type BorrowInput struct {
	BookID     uint       `json:"book_id" validate:"required"`
	MemberID   uint       `json:"member_id" validate:"required"`
	BorrowDate *time.Time `json:"borrow_date,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Borrow creates a new loan. Eligibility check, loan creation and copy
// reservation are applied as one atomic unit: if the reservation fails,
// the loan row is rolled back with it.
func (s *LoanService) Borrow(ctx context.Context, input *BorrowInput) (*models.Loan, error) {
	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}

	var loan *models.Loan
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		book, err := s.bookRepo.GetByID(ctx, input.BookID)
		if err != nil {
			return err
		}

		if err := s.eligibility.Check(ctx, book, member); err != nil {
			return err
		}

		borrowDate := dateOf(s.now())
		if input.BorrowDate != nil {
			borrowDate = dateOf(*input.BorrowDate)
		}
		dueDate := borrowDate.AddDate(0, 0, s.cfg.DefaultBorrowDays)
		if input.DueDate != nil {
			dueDate = dateOf(*input.DueDate)
		}
		if dueDate.Before(borrowDate) {
			return domain.ErrInvalidInput
		}

		loan = &models.Loan{
			LoanRef:    uuid.New().String(),
			BookID:     book.ID,
			MemberID:   member.ID,
			BorrowDate: borrowDate,
			DueDate:    dueDate,
			Status:     models.LoanStatusBorrowed,
			FineAmount: 0,
			Notes:      input.Notes,
		}
		if err := s.loanRepo.Create(ctx, loan); err != nil {
			return err
		}

		if err := s.bookRepo.Reserve(ctx, book.ID); err != nil {
			if errors.Is(err, domain.ErrInsufficientCopies) {
				// Lost the race for the last copy after the
				// eligibility check passed.
				return domain.ErrNoCopiesAvailable
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loan.ID)
}

// Return closes an active loan, freezes its fine and releases the copy
func (s *LoanService) Return(ctx context.Context, loanID uint) (*models.Loan, error) {
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if !loan.IsActive() {
			if loan.Status == models.LoanStatusReturned {
				return domain.ErrAlreadyReturned
			}
			return domain.ErrLoanNotActive
		}
		if loan.ReturnDate != nil {
			return domain.ErrAlreadyReturned
		}

		today := dateOf(s.now())
		loan.ReturnDate = &today
		loan.Status = models.LoanStatusReturned
		// Always recomputed from the due date; a stored amount left
		// behind by a missed sweep is never trusted.
		loan.FineAmount = s.fines.Amount(loan.DueDate, today)

		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		if err := s.bookRepo.Release(ctx, loan.BookID); err != nil {
			log.Printf("❌ Inventory release failed for book %d (loan %d): %v",
				loan.BookID, loan.ID, err)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

// ExtendDueDate pushes an active loan's due date out by the given
// number of days. An OVERDUE status is not cleared here; the next
// return or sweep recomputes against the new due date.
func (s *LoanService) ExtendDueDate(ctx context.Context, loanID uint, days int) (*models.Loan, error) {
	if days < s.cfg.MinExtendDays || days > s.cfg.MaxExtendDays {
		return nil, domain.ErrInvalidExtension
	}

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if !loan.IsActive() {
			return domain.ErrLoanNotActive
		}

		loan.DueDate = loan.DueDate.AddDate(0, 0, days)
		return s.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

// GetByID gets a loan by ID with book and member details
func (s *LoanService) GetByID(ctx context.Context, loanID uint) (*models.Loan, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

// ListInput represents list input
type ListInput struct {
	Page         int
	Limit        int
	MemberID     *uint
	BookID       *uint
	Status       *string
	BorrowedFrom *time.Time
	BorrowedTo   *time.Time
}

// ListOutput represents list output
type ListOutput struct {
	Loans      []*models.Loan `json:"loans"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// List lists loans matching the filter
func (s *LoanService) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.LoanFilter{
		MemberID:     input.MemberID,
		BookID:       input.BookID,
		Status:       input.Status,
		BorrowedFrom: input.BorrowedFrom,
		BorrowedTo:   input.BorrowedTo,
		Offset:       (input.Page - 1) * input.Limit,
		Limit:        input.Limit,
	}

	loans, total, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Loans:      loans,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// MemberOutstandingFines returns the member's summed fines, recomputing
// live amounts for active loans
func (s *LoanService) MemberOutstandingFines(ctx context.Context, memberID uint) (float64, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return 0, err
	}
	return s.eligibility.OutstandingFines(ctx, memberID)
}

// Sweep reclassifies BORROWED loans past their due date to OVERDUE and
// refreshes their fine. Safe to rerun: each loan is flipped at most
// once, and a loan returned mid-sweep is left alone.
func (s *LoanService) Sweep(ctx context.Context) (int, error) {
	today := dateOf(s.now())

	candidates, err := s.loanRepo.ListOverdueCandidates(ctx, today)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, loan := range candidates {
		fine := s.fines.Amount(loan.DueDate, today)
		changed, err := s.loanRepo.MarkOverdue(ctx, loan.ID, fine)
		if err != nil {
			return updated, err
		}
		if !changed {
			continue
		}
		updated++
		if s.notify != nil {
			s.notify.NotifyOverdue(loan, fine)
		}
	}

	if updated > 0 {
		log.Printf("🔄 Overdue sweep reclassified %d loans", updated)
	}
	return updated, nil
}

// DueSoon returns active loans due within the next day, for reminders
func (s *LoanService) DueSoon(ctx context.Context) ([]*models.Loan, error) {
	today := dateOf(s.now())
	return s.loanRepo.ListDueBetween(ctx, today, today.AddDate(0, 0, 1))
}

// Statistics returns loan counts per status
func (s *LoanService) Statistics(ctx context.Context) (map[string]int64, error) {
	return s.loanRepo.CountByStatus(ctx)
}

// Delete removes a loan record. An active loan releases its copy back
// to the book first, so inventory never leaks.
func (s *LoanService) Delete(ctx context.Context, loanID uint) error {
	return s.tx.Transact(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if loan.IsActive() {
			if err := s.bookRepo.Release(ctx, loan.BookID); err != nil {
				log.Printf("❌ Inventory release failed for book %d (loan %d): %v",
					loan.BookID, loan.ID, err)
				return err
			}
		}

		return s.loanRepo.Delete(ctx, loan.ID)
	})
}

// AdminUpdateInput represents a field-level admin update
type AdminUpdateInput struct {
	BorrowDate *time.Time `json:"borrow_date,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     *string    `json:"status,omitempty"`
	FineAmount *float64   `json:"fine_amount,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// AdminUpdate patches loan fields directly. This is the only path to
// the LOST and DAMAGED states. Setting a return date recomputes the
// fine against the (possibly updated) due date. Closing an active loan
// with status RETURNED releases the copy; LOST and DAMAGED do not put
// the copy back on the shelf.
func (s *LoanService) AdminUpdate(ctx context.Context, loanID uint, input *AdminUpdateInput) (*models.Loan, error) {
	if input.Status != nil && !validLoanStatus(*input.Status) {
		return nil, domain.ErrInvalidInput
	}

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		wasActive := loan.IsActive()

		if input.BorrowDate != nil {
			loan.BorrowDate = dateOf(*input.BorrowDate)
		}
		if input.DueDate != nil {
			loan.DueDate = dateOf(*input.DueDate)
		}
		if loan.DueDate.Before(loan.BorrowDate) {
			return domain.ErrInvalidInput
		}
		if input.ReturnDate != nil {
			rd := dateOf(*input.ReturnDate)
			loan.ReturnDate = &rd
			loan.FineAmount = s.fines.Amount(loan.DueDate, rd)
		}
		if input.Status != nil {
			loan.Status = *input.Status
		}
		if input.FineAmount != nil {
			if *input.FineAmount < 0 {
				return domain.ErrInvalidInput
			}
			loan.FineAmount = *input.FineAmount
		}
		if input.Notes != nil {
			loan.Notes = *input.Notes
		}

		// A RETURNED loan carries a return date; an active one does not
		if loan.Status == models.LoanStatusReturned && loan.ReturnDate == nil {
			return domain.ErrInvalidInput
		}
		if loan.IsActive() && loan.ReturnDate != nil {
			return domain.ErrInvalidInput
		}

		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		if wasActive && loan.Status == models.LoanStatusReturned {
			if err := s.bookRepo.Release(ctx, loan.BookID); err != nil {
				log.Printf("❌ Inventory release failed for book %d (loan %d): %v",
					loan.BookID, loan.ID, err)
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

func validLoanStatus(status string) bool {
	switch status {
	case models.LoanStatusBorrowed,
		models.LoanStatusReturned,
		models.LoanStatusOverdue,
		models.LoanStatusLost,
		models.LoanStatusDamaged:
		return true
	}
	return false
}

// dateOf strips the time of day; lending dates are calendar dates
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
