package services

import (
	"context"
	"math"
	"time"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/config"
	"libralend/internal/core/domain"
)

// EligibilityChecker decides whether a new loan may be created for a
// (book, member) pair. Checks run in a fixed order and the first
// failure is the reported reason.
type EligibilityChecker struct {
	loanRepo repositories.LoanRepository
	fines    domain.FineCalculator
	cfg      config.LibraryConfig
	now      func() time.Time
}

// NewEligibilityChecker creates a new eligibility checker
func NewEligibilityChecker(loanRepo repositories.LoanRepository, cfg config.LibraryConfig) *EligibilityChecker {
	return &EligibilityChecker{
		loanRepo: loanRepo,
		fines: domain.FineCalculator{
			GracePeriodDays: cfg.GracePeriodDays,
			FinePerDay:      cfg.FinePerDay,
		},
		cfg: cfg,
		now: time.Now,
	}
}

// Check runs the borrowing rules against an already loaded book and
// member:
//  1. membership must be ACTIVE
//  2. the book must have an available copy
//  3. the member must not already hold this book
//  4. the member must be under the borrow limit
//  5. the member's outstanding fines must not exceed the ceiling
func (c *EligibilityChecker) Check(ctx context.Context, book *models.Book, member *models.Member) error {
	if !member.IsActive() {
		return domain.ErrMemberNotActive
	}

	if book.AvailableCopies <= 0 {
		return domain.ErrNoCopiesAvailable
	}

	alreadyBorrowed, err := c.loanRepo.HasActiveLoan(ctx, book.ID, member.ID)
	if err != nil {
		return err
	}
	if alreadyBorrowed {
		return domain.ErrDuplicateLoan
	}

	activeLoans, err := c.loanRepo.CountActiveByMember(ctx, member.ID)
	if err != nil {
		return err
	}
	if activeLoans >= int64(c.cfg.MaxBooksPerMember) {
		return domain.ErrBorrowLimitReached
	}

	outstanding, err := c.OutstandingFines(ctx, member.ID)
	if err != nil {
		return err
	}
	if outstanding > c.cfg.FineCeiling {
		return domain.ErrFineCeilingExceeded
	}

	return nil
}

// OutstandingFines sums a member's fines across all loans, frozen or
// live. Fines of active loans are recomputed against today rather than
// read from the stored amount, which may predate the last sweep.
func (c *EligibilityChecker) OutstandingFines(ctx context.Context, memberID uint) (float64, error) {
	loans, err := c.loanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}

	today := c.now()
	var total float64
	for _, loan := range loans {
		if loan.IsActive() {
			total += c.fines.Amount(loan.DueDate, today)
		} else {
			total += loan.FineAmount
		}
	}

	return math.Round(total*100) / 100, nil
}
