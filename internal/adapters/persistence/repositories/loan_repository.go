package repositories

import (
	"context"
	"errors"
	"time"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoanRepository handles loan data access
type GormLoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// Create creates a new loan
func (r *GormLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return conn(ctx, r.db).Create(loan).Error
}

// GetByID gets a loan by ID with book and member details
func (r *GormLoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := conn(ctx, r.db).
		Preload("Book").
		Preload("Book.Author").
		Preload("Member").
		First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// GetByIDForUpdate locks the loan row until the enclosing transaction
// commits. Must be called through Transactor.Transact.
func (r *GormLoanRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *GormLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return conn(ctx, r.db).Save(loan).Error
}

// Delete removes a loan record permanently
func (r *GormLoanRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Loan{}, id).Error
}

// List lists loans matching the filter
func (r *GormLoanRepository) List(ctx context.Context, filter *LoanFilter) ([]*models.Loan, int64, error) {
	query := conn(ctx, r.db).Model(&models.Loan{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.BookID != nil {
		query = query.Where("book_id = ?", *filter.BookID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BorrowedFrom != nil {
		query = query.Where("borrow_date >= ?", *filter.BorrowedFrom)
	}
	if filter.BorrowedTo != nil {
		query = query.Where("borrow_date <= ?", *filter.BorrowedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var loans []*models.Loan
	err := query.
		Preload("Book").
		Preload("Book.Author").
		Preload("Member").
		Order("borrow_date DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByMember lists all loans of a member, active or closed
func (r *GormLoanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := conn(ctx, r.db).
		Where("member_id = ?", memberID).
		Order("borrow_date DESC").
		Find(&loans).Error
	return loans, err
}

// CountActiveByMember counts a member's BORROWED/OVERDUE loans
func (r *GormLoanRepository) CountActiveByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Loan{}).
		Where("member_id = ? AND status IN ?", memberID,
			[]string{models.LoanStatusBorrowed, models.LoanStatusOverdue}).
		Count(&count).Error
	return count, err
}

// HasActiveLoan reports whether the member already holds this book
func (r *GormLoanRepository) HasActiveLoan(ctx context.Context, bookID, memberID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Loan{}).
		Where("book_id = ? AND member_id = ? AND status IN ?", bookID, memberID,
			[]string{models.LoanStatusBorrowed, models.LoanStatusOverdue}).
		Count(&count).Error
	return count > 0, err
}

// ListOverdueCandidates returns BORROWED loans past due as of the given date
func (r *GormLoanRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := conn(ctx, r.db).
		Where("status = ? AND due_date < ?", models.LoanStatusBorrowed, asOf).
		Find(&loans).Error
	return loans, err
}

// MarkOverdue flips one loan to OVERDUE if it is still BORROWED. The
// status guard makes the sweep idempotent and keeps it from clobbering
// a loan returned between the candidate query and this update.
func (r *GormLoanRepository) MarkOverdue(ctx context.Context, loanID uint, fine float64) (bool, error) {
	res := conn(ctx, r.db).
		Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, models.LoanStatusBorrowed).
		Updates(map[string]interface{}{
			"status":      models.LoanStatusOverdue,
			"fine_amount": fine,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListDueBetween returns active loans due inside the window
func (r *GormLoanRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := conn(ctx, r.db).
		Preload("Book").
		Preload("Member").
		Where("status IN ? AND due_date >= ? AND due_date <= ?",
			[]string{models.LoanStatusBorrowed, models.LoanStatusOverdue}, from, to).
		Find(&loans).Error
	return loans, err
}

// CountByStatus returns loan counts grouped by status
func (r *GormLoanRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := conn(ctx, r.db).
		Model(&models.Loan{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
