package repositories

import (
	"context"
	"time"

	"libralend/internal/adapters/persistence/models"
)

// Transactor draws an explicit atomic boundary around a unit of work.
// All repository calls made through the ctx passed to fn share one
// transaction; returning an error rolls everything back.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthorRepository defines author data access
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id uint) (*models.Author, error)
	List(ctx context.Context, offset, limit int) ([]*models.Author, int64, error)
	Update(ctx context.Context, author *models.Author) error
	Delete(ctx context.Context, id uint) error
}

// BookRepository defines book data access. Reserve and Release form the
// inventory ledger: each is a single conditional update that refuses to
// move available_copies outside [0, total_copies], atomic per book with
// respect to concurrent reservations.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	Search(ctx context.Context, filter *BookSearchFilter) ([]*models.Book, error)
	ListAvailable(ctx context.Context) ([]*models.Book, error)
	ListCategories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error

	Reserve(ctx context.Context, bookID uint) error
	Release(ctx context.Context, bookID uint) error
}

// BookSearchFilter constrains book searches; zero values are ignored.
type BookSearchFilter struct {
	Title          string
	Category       string
	AuthorName     string
	PublishingYear int
}

// MemberRepository defines member data access
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Search(ctx context.Context, term string) ([]*models.Member, error)
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
}

// LoanFilter constrains loan listings; nil fields are ignored.
type LoanFilter struct {
	MemberID     *uint
	BookID       *uint
	Status       *string
	BorrowedFrom *time.Time
	BorrowedTo   *time.Time
	Offset       int
	Limit        int
}

// LoanRepository defines loan data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	// GetByIDForUpdate locks the loan row for the rest of the enclosing
	// transaction so concurrent returns of the same loan serialize.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter *LoanFilter) ([]*models.Loan, int64, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error)
	CountActiveByMember(ctx context.Context, memberID uint) (int64, error)
	HasActiveLoan(ctx context.Context, bookID, memberID uint) (bool, error)
	// ListOverdueCandidates returns active BORROWED loans whose due date
	// has passed as of the given date.
	ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*models.Loan, error)
	// MarkOverdue flips a loan to OVERDUE with the given fine only if it
	// is still BORROWED; reports whether a row changed.
	MarkOverdue(ctx context.Context, loanID uint, fine float64) (bool, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
