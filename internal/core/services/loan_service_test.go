package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/config"
	"libralend/internal/core/domain"

	"github.com/stretchr/testify/suite"
)

// ---------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------

func cloneLoan(l models.Loan) models.Loan {
	if l.ReturnDate != nil {
		rd := *l.ReturnDate
		l.ReturnDate = &rd
	}
	return l
}

type memLoanRepo struct {
	mu    sync.RWMutex
	seq   uint
	items map[uint]models.Loan
}

func newMemLoanRepo() *memLoanRepo {
	return &memLoanRepo{items: make(map[uint]models.Loan)}
}

func (r *memLoanRepo) snapshot() map[uint]models.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[uint]models.Loan, len(r.items))
	for id, l := range r.items {
		snap[id] = cloneLoan(l)
	}
	return snap
}

func (r *memLoanRepo) restore(snap map[uint]models.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = snap
}

func (r *memLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	loan.ID = r.seq
	r.items[loan.ID] = cloneLoan(*loan)
	return nil
}

func (r *memLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	out := cloneLoan(l)
	return &out, nil
}

func (r *memLoanRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *memLoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[loan.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	r.items[loan.ID] = cloneLoan(*loan)
	return nil
}

func (r *memLoanRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrLoanNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memLoanRepo) all() []models.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Loan, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, cloneLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memLoanRepo) List(ctx context.Context, filter *repositories.LoanFilter) ([]*models.Loan, int64, error) {
	var matched []*models.Loan
	for _, l := range r.all() {
		l := l
		if filter.MemberID != nil && l.MemberID != *filter.MemberID {
			continue
		}
		if filter.BookID != nil && l.BookID != *filter.BookID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.BorrowedFrom != nil && l.BorrowDate.Before(*filter.BorrowedFrom) {
			continue
		}
		if filter.BorrowedTo != nil && l.BorrowDate.After(*filter.BorrowedTo) {
			continue
		}
		matched = append(matched, &l)
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memLoanRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range r.all() {
		l := l
		if l.MemberID == memberID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) CountActiveByMember(ctx context.Context, memberID uint) (int64, error) {
	var n int64
	for _, l := range r.all() {
		if l.MemberID == memberID && l.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *memLoanRepo) HasActiveLoan(ctx context.Context, bookID, memberID uint) (bool, error) {
	for _, l := range r.all() {
		if l.BookID == bookID && l.MemberID == memberID && l.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLoanRepo) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range r.all() {
		l := l
		if l.Status == models.LoanStatusBorrowed && l.DueDate.Before(asOf) {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) MarkOverdue(ctx context.Context, loanID uint, fine float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[loanID]
	if !ok || l.Status != models.LoanStatusBorrowed {
		return false, nil
	}
	l.Status = models.LoanStatusOverdue
	l.FineAmount = fine
	r.items[loanID] = l
	return true, nil
}

func (r *memLoanRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range r.all() {
		l := l
		if l.IsActive() && !l.DueDate.Before(from) && !l.DueDate.After(to) {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, l := range r.all() {
		counts[l.Status]++
	}
	return counts, nil
}

type memBookRepo struct {
	mu    sync.RWMutex
	seq   uint
	items map[uint]models.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{items: make(map[uint]models.Book)}
}

func (r *memBookRepo) snapshot() map[uint]models.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[uint]models.Book, len(r.items))
	for id, b := range r.items {
		snap[id] = b
	}
	return snap
}

func (r *memBookRepo) restore(snap map[uint]models.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = snap
}

func (r *memBookRepo) Create(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	book.ID = r.seq
	r.items[book.ID] = *book
	return nil
}

func (r *memBookRepo) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return &b, nil
}

func (r *memBookRepo) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	return nil, 0, nil
}

func (r *memBookRepo) Search(ctx context.Context, filter *repositories.BookSearchFilter) ([]*models.Book, error) {
	return nil, nil
}

func (r *memBookRepo) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	return nil, nil
}

func (r *memBookRepo) ListCategories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (r *memBookRepo) Update(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[book.ID]; !ok {
		return domain.ErrBookNotFound
	}
	r.items[book.ID] = *book
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memBookRepo) Reserve(ctx context.Context, bookID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[bookID]
	if !ok || b.AvailableCopies <= 0 {
		return domain.ErrInsufficientCopies
	}
	b.AvailableCopies--
	r.items[bookID] = b
	return nil
}

func (r *memBookRepo) Release(ctx context.Context, bookID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[bookID]
	if !ok || b.AvailableCopies >= b.TotalCopies {
		return domain.ErrOverCapacity
	}
	b.AvailableCopies++
	r.items[bookID] = b
	return nil
}

type memMemberRepo struct {
	mu    sync.RWMutex
	seq   uint
	items map[uint]models.Member
}

func newMemMemberRepo() *memMemberRepo {
	return &memMemberRepo{items: make(map[uint]models.Member)}
}

func (r *memMemberRepo) Create(ctx context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	member.ID = r.seq
	r.items[member.ID] = *member
	return nil
}

func (r *memMemberRepo) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (r *memMemberRepo) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.items {
		if m.Email == email {
			m := m
			return &m, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *memMemberRepo) Search(ctx context.Context, term string) ([]*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(term)
	var out []*models.Member
	for _, m := range r.items {
		if strings.Contains(strings.ToLower(m.Name), needle) ||
			strings.Contains(strings.ToLower(m.Email), needle) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memMemberRepo) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return nil, 0, nil
}

func (r *memMemberRepo) Update(ctx context.Context, member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[member.ID]; !ok {
		return domain.ErrMemberNotFound
	}
	r.items[member.ID] = *member
	return nil
}

func (r *memMemberRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// reserveRacingBookRepo refuses every reservation, standing in for a
// concurrent borrower taking the last copy between the eligibility
// check and the inventory update.
type reserveRacingBookRepo struct {
	*memBookRepo
}

func (r *reserveRacingBookRepo) Reserve(ctx context.Context, bookID uint) error {
	return domain.ErrInsufficientCopies
}

// memTransactor serializes units of work and rolls the loan and book
// stores back when fn fails, mirroring a database transaction.
type memTransactor struct {
	mu    sync.Mutex
	loans *memLoanRepo
	books *memBookRepo
}

func (t *memTransactor) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	loanSnap := t.loans.snapshot()
	bookSnap := t.books.snapshot()
	if err := fn(ctx); err != nil {
		t.loans.restore(loanSnap)
		t.books.restore(bookSnap)
		return err
	}
	return nil
}

// ---------------------------------------------------------------------
// Suite
// ---------------------------------------------------------------------

type LoanServiceSuite struct {
	suite.Suite
	ctx     context.Context
	loans   *memLoanRepo
	books   *memBookRepo
	members *memMemberRepo
	svc     *LoanService
	today   time.Time
}

func TestLoanServiceSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceSuite))
}

func (s *LoanServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.loans = newMemLoanRepo()
	s.books = newMemBookRepo()
	s.members = newMemMemberRepo()
	s.today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cfg := config.LibraryConfig{
		DefaultBorrowDays: 14,
		MaxBooksPerMember: 5,
		FinePerDay:        1.00,
		GracePeriodDays:   1,
		FineCeiling:       50.00,
		MinExtendDays:     1,
		MaxExtendDays:     14,
	}

	tx := &memTransactor{loans: s.loans, books: s.books}
	s.svc = NewLoanService(s.loans, s.books, s.members, tx, cfg, nil)
	s.svc.now = func() time.Time { return s.today }
	s.svc.eligibility.now = s.svc.now
}

func (s *LoanServiceSuite) seedBook(copies int) uint {
	book := &models.Book{
		Title:           "The Dispossessed",
		Category:        "Fiction",
		PublishingYear:  1974,
		TotalCopies:     copies,
		AvailableCopies: copies,
		AuthorID:        1,
	}
	s.Require().NoError(s.books.Create(s.ctx, book))
	return book.ID
}

func (s *LoanServiceSuite) seedMember(status string) uint {
	member := &models.Member{
		Name:             "Jordan Reyes",
		Email:            "jordan@example.com",
		MembershipStatus: status,
	}
	s.Require().NoError(s.members.Create(s.ctx, member))
	return member.ID
}

func (s *LoanServiceSuite) borrow(bookID, memberID uint) *models.Loan {
	loan, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: memberID})
	s.Require().NoError(err)
	return loan
}

// borrowDue creates a loan with an explicit lending window
func (s *LoanServiceSuite) borrowDue(bookID, memberID uint, borrow, due time.Time) *models.Loan {
	loan, err := s.svc.Borrow(s.ctx, &BorrowInput{
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: &borrow,
		DueDate:    &due,
	})
	s.Require().NoError(err)
	return loan
}

func (s *LoanServiceSuite) availableCopies(bookID uint) int {
	book, err := s.books.GetByID(s.ctx, bookID)
	s.Require().NoError(err)
	return book.AvailableCopies
}

func (s *LoanServiceSuite) TestBorrowDefaults() {
	bookID := s.seedBook(3)
	memberID := s.seedMember(models.MemberStatusActive)

	loan := s.borrow(bookID, memberID)

	s.Equal(models.LoanStatusBorrowed, loan.Status)
	s.NotEmpty(loan.LoanRef)
	s.True(loan.BorrowDate.Equal(s.today))
	s.True(loan.DueDate.Equal(s.today.AddDate(0, 0, 14)))
	s.Nil(loan.ReturnDate)
	s.Zero(loan.FineAmount)
	s.Equal(2, s.availableCopies(bookID))
}

func (s *LoanServiceSuite) TestBorrowExplicitDates() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)

	borrow := s.today.AddDate(0, 0, -3)
	due := s.today.AddDate(0, 0, 4)
	loan := s.borrowDue(bookID, memberID, borrow, due)

	s.True(loan.BorrowDate.Equal(borrow))
	s.True(loan.DueDate.Equal(due))
}

func (s *LoanServiceSuite) TestBorrowDueBeforeBorrowDate() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)

	due := s.today.AddDate(0, 0, -1)
	_, err := s.svc.Borrow(s.ctx, &BorrowInput{
		BookID:   bookID,
		MemberID: memberID,
		DueDate:  &due,
	})
	s.ErrorIs(err, domain.ErrInvalidInput)
	s.Equal(1, s.availableCopies(bookID))
}

func (s *LoanServiceSuite) TestBorrowUnknownMemberAndBook() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)

	_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: 99})
	s.ErrorIs(err, domain.ErrMemberNotFound)

	_, err = s.svc.Borrow(s.ctx, &BorrowInput{BookID: 99, MemberID: memberID})
	s.ErrorIs(err, domain.ErrBookNotFound)
}

func (s *LoanServiceSuite) TestBorrowEligibility() {
	s.Run("inactive member", func() {
		s.SetupTest()
		bookID := s.seedBook(1)
		memberID := s.seedMember(models.MemberStatusSuspended)

		_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: memberID})
		s.ErrorIs(err, domain.ErrMemberNotActive)
	})

	s.Run("no copies available", func() {
		s.SetupTest()
		bookID := s.seedBook(1)
		first := s.seedMember(models.MemberStatusActive)
		second := &models.Member{Name: "Sam", Email: "sam@example.com", MembershipStatus: models.MemberStatusActive}
		s.Require().NoError(s.members.Create(s.ctx, second))

		s.borrow(bookID, first)
		_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: second.ID})
		s.ErrorIs(err, domain.ErrNoCopiesAvailable)
	})

	s.Run("duplicate loan for same book", func() {
		s.SetupTest()
		bookID := s.seedBook(3)
		memberID := s.seedMember(models.MemberStatusActive)

		s.borrow(bookID, memberID)
		_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: memberID})
		s.ErrorIs(err, domain.ErrDuplicateLoan)
		s.Equal(2, s.availableCopies(bookID))
	})

	s.Run("borrow limit reached", func() {
		s.SetupTest()
		memberID := s.seedMember(models.MemberStatusActive)
		for i := 0; i < 5; i++ {
			s.borrow(s.seedBook(1), memberID)
		}

		extra := s.seedBook(1)
		_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: extra, MemberID: memberID})
		s.ErrorIs(err, domain.ErrBorrowLimitReached)
	})

	s.Run("fine ceiling exceeded", func() {
		s.SetupTest()
		memberID := s.seedMember(models.MemberStatusActive)

		// A closed loan with a frozen fine above the ceiling
		rd := s.today.AddDate(0, 0, -1)
		s.Require().NoError(s.loans.Create(s.ctx, &models.Loan{
			LoanRef:    "old-loan",
			BookID:     s.seedBook(1),
			MemberID:   memberID,
			BorrowDate: s.today.AddDate(0, 0, -90),
			DueDate:    s.today.AddDate(0, 0, -76),
			ReturnDate: &rd,
			Status:     models.LoanStatusReturned,
			FineAmount: 50.01,
		}))

		bookID := s.seedBook(1)
		_, err := s.svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: memberID})
		s.ErrorIs(err, domain.ErrFineCeilingExceeded)
	})
}

func (s *LoanServiceSuite) TestBorrowLostReservationRaceRollsBack() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)

	racing := &reserveRacingBookRepo{memBookRepo: s.books}
	tx := &memTransactor{loans: s.loans, books: s.books}
	svc := NewLoanService(s.loans, racing, s.members, tx, s.svc.cfg, nil)
	svc.now = s.svc.now
	svc.eligibility.now = s.svc.now

	// Eligibility sees an available copy, the reservation still fails
	_, err := svc.Borrow(s.ctx, &BorrowInput{BookID: bookID, MemberID: memberID})
	s.ErrorIs(err, domain.ErrNoCopiesAvailable)

	s.Empty(s.loans.all(), "a failed reservation must not leave a loan row behind")
	s.Equal(1, s.availableCopies(bookID))
}

func (s *LoanServiceSuite) TestReturnReleaseFailureRollsBack() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	// Corrupt the ledger so the release would overshoot the total
	book, err := s.books.GetByID(s.ctx, bookID)
	s.Require().NoError(err)
	book.AvailableCopies = book.TotalCopies
	s.Require().NoError(s.books.Update(s.ctx, book))

	_, err = s.svc.Return(s.ctx, loan.ID)
	s.ErrorIs(err, domain.ErrOverCapacity)

	got, err := s.loans.GetByID(s.ctx, loan.ID)
	s.Require().NoError(err)
	s.Equal(models.LoanStatusBorrowed, got.Status, "a failed release must leave the loan open")
	s.Nil(got.ReturnDate)
	s.Zero(got.FineAmount)
}

func (s *LoanServiceSuite) TestReturnOnTime() {
	bookID := s.seedBook(2)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)
	s.Equal(1, s.availableCopies(bookID))

	returned, err := s.svc.Return(s.ctx, loan.ID)
	s.Require().NoError(err)

	s.Equal(models.LoanStatusReturned, returned.Status)
	s.Require().NotNil(returned.ReturnDate)
	s.True(returned.ReturnDate.Equal(s.today))
	s.Zero(returned.FineAmount)
	s.Equal(2, s.availableCopies(bookID))
}

func (s *LoanServiceSuite) TestReturnLateComputesFine() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)

	// Due 10 days ago: 10 days overdue minus 1 grace day at 1.00/day
	loan := s.borrowDue(bookID, memberID, s.today.AddDate(0, 0, -24), s.today.AddDate(0, 0, -10))

	returned, err := s.svc.Return(s.ctx, loan.ID)
	s.Require().NoError(err)
	s.InDelta(9.00, returned.FineAmount, 0.001)
	s.Equal(models.LoanStatusReturned, returned.Status)
}

func (s *LoanServiceSuite) TestReturnTwice() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	_, err := s.svc.Return(s.ctx, loan.ID)
	s.Require().NoError(err)

	_, err = s.svc.Return(s.ctx, loan.ID)
	s.ErrorIs(err, domain.ErrAlreadyReturned)
	s.Equal(1, s.availableCopies(bookID), "double return must not release the copy twice")
}

func (s *LoanServiceSuite) TestReturnLostLoan() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	status := models.LoanStatusLost
	_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{Status: &status})
	s.Require().NoError(err)

	_, err = s.svc.Return(s.ctx, loan.ID)
	s.ErrorIs(err, domain.ErrLoanNotActive)
}

func (s *LoanServiceSuite) TestReturnUnknownLoan() {
	_, err := s.svc.Return(s.ctx, 42)
	s.ErrorIs(err, domain.ErrLoanNotFound)
}

func (s *LoanServiceSuite) TestExtendDueDate() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)
	originalDue := loan.DueDate

	extended, err := s.svc.ExtendDueDate(s.ctx, loan.ID, 7)
	s.Require().NoError(err)
	s.True(extended.DueDate.Equal(originalDue.AddDate(0, 0, 7)))
}

func (s *LoanServiceSuite) TestExtendBounds() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	_, err := s.svc.ExtendDueDate(s.ctx, loan.ID, 0)
	s.ErrorIs(err, domain.ErrInvalidExtension)

	_, err = s.svc.ExtendDueDate(s.ctx, loan.ID, 15)
	s.ErrorIs(err, domain.ErrInvalidExtension)

	_, err = s.svc.ExtendDueDate(s.ctx, loan.ID, -3)
	s.ErrorIs(err, domain.ErrInvalidExtension)
}

func (s *LoanServiceSuite) TestExtendClosedLoan() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	_, err := s.svc.Return(s.ctx, loan.ID)
	s.Require().NoError(err)

	_, err = s.svc.ExtendDueDate(s.ctx, loan.ID, 7)
	s.ErrorIs(err, domain.ErrLoanNotActive)
}

func (s *LoanServiceSuite) TestExtendOverdueLoanKeepsStatus() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrowDue(bookID, memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))

	_, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)

	extended, err := s.svc.ExtendDueDate(s.ctx, loan.ID, 14)
	s.Require().NoError(err)
	s.Equal(models.LoanStatusOverdue, extended.Status)
	s.True(extended.DueDate.Equal(s.today.AddDate(0, 0, 9)))
}

func (s *LoanServiceSuite) TestSweep() {
	memberID := s.seedMember(models.MemberStatusActive)

	overdue := s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))
	dueToday := s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -14), s.today)
	current := s.borrow(s.seedBook(1), memberID)

	closed := s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -30), s.today.AddDate(0, 0, -16))
	_, err := s.svc.Return(s.ctx, closed.ID)
	s.Require().NoError(err)

	updated, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, updated)

	got, _ := s.loans.GetByID(s.ctx, overdue.ID)
	s.Equal(models.LoanStatusOverdue, got.Status)
	s.InDelta(4.00, got.FineAmount, 0.001)

	got, _ = s.loans.GetByID(s.ctx, dueToday.ID)
	s.Equal(models.LoanStatusBorrowed, got.Status, "a loan due today is not overdue yet")

	got, _ = s.loans.GetByID(s.ctx, current.ID)
	s.Equal(models.LoanStatusBorrowed, got.Status)

	got, _ = s.loans.GetByID(s.ctx, closed.ID)
	s.Equal(models.LoanStatusReturned, got.Status, "the sweep must leave closed loans alone")
}

func (s *LoanServiceSuite) TestSweepIsIdempotent() {
	memberID := s.seedMember(models.MemberStatusActive)
	s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))

	first, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, first)

	second, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(second)
}

func (s *LoanServiceSuite) TestReturnAfterSweepMatchesDirectReturn() {
	memberID := s.seedMember(models.MemberStatusActive)
	borrow := s.today.AddDate(0, 0, -20)
	due := s.today.AddDate(0, 0, -5)

	swept := s.borrowDue(s.seedBook(1), memberID, borrow, due)
	direct := s.borrowDue(s.seedBook(1), memberID, borrow, due)

	_, err := s.svc.Sweep(s.ctx)
	s.Require().NoError(err)

	sweptReturned, err := s.svc.Return(s.ctx, swept.ID)
	s.Require().NoError(err)
	directReturned, err := s.svc.Return(s.ctx, direct.ID)
	s.Require().NoError(err)

	s.InDelta(directReturned.FineAmount, sweptReturned.FineAmount, 0.001,
		"the fine owed must not depend on whether a sweep ran first")
}

func (s *LoanServiceSuite) TestOutstandingFinesAreLive() {
	memberID := s.seedMember(models.MemberStatusActive)

	// Overdue but never swept: the stored fine is still zero
	s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))

	total, err := s.svc.MemberOutstandingFines(s.ctx, memberID)
	s.Require().NoError(err)
	s.InDelta(4.00, total, 0.001)
}

func (s *LoanServiceSuite) TestOutstandingFinesUnknownMember() {
	_, err := s.svc.MemberOutstandingFines(s.ctx, 42)
	s.ErrorIs(err, domain.ErrMemberNotFound)
}

func (s *LoanServiceSuite) TestDeleteActiveLoanReleasesCopy() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)
	s.Equal(0, s.availableCopies(bookID))

	s.Require().NoError(s.svc.Delete(s.ctx, loan.ID))
	s.Equal(1, s.availableCopies(bookID))

	_, err := s.loans.GetByID(s.ctx, loan.ID)
	s.ErrorIs(err, domain.ErrLoanNotFound)
}

func (s *LoanServiceSuite) TestDeleteClosedLoanLeavesInventory() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	_, err := s.svc.Return(s.ctx, loan.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, loan.ID))
	s.Equal(1, s.availableCopies(bookID), "deleting a returned loan must not release again")
}

func (s *LoanServiceSuite) TestAdminUpdateMarksLost() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	status := models.LoanStatusLost
	fine := 25.00
	updated, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{Status: &status, FineAmount: &fine})
	s.Require().NoError(err)

	s.Equal(models.LoanStatusLost, updated.Status)
	s.InDelta(25.00, updated.FineAmount, 0.001)
	s.Equal(0, s.availableCopies(bookID), "a lost copy does not go back on the shelf")
}

func (s *LoanServiceSuite) TestAdminUpdateReturnReleasesCopy() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrowDue(bookID, memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))

	status := models.LoanStatusReturned
	rd := s.today
	updated, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{Status: &status, ReturnDate: &rd})
	s.Require().NoError(err)

	s.Equal(models.LoanStatusReturned, updated.Status)
	s.InDelta(4.00, updated.FineAmount, 0.001)
	s.Equal(1, s.availableCopies(bookID))
}

func (s *LoanServiceSuite) TestAdminUpdateRejectsInvalid() {
	bookID := s.seedBook(1)
	memberID := s.seedMember(models.MemberStatusActive)
	loan := s.borrow(bookID, memberID)

	s.Run("unknown status", func() {
		status := "MISPLACED"
		_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{Status: &status})
		s.ErrorIs(err, domain.ErrInvalidInput)
	})

	s.Run("negative fine", func() {
		fine := -1.00
		_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{FineAmount: &fine})
		s.ErrorIs(err, domain.ErrInvalidInput)
	})

	s.Run("returned without return date", func() {
		status := models.LoanStatusReturned
		_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{Status: &status})
		s.ErrorIs(err, domain.ErrInvalidInput)
	})

	s.Run("due date before borrow date", func() {
		due := loan.BorrowDate.AddDate(0, 0, -1)
		_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{DueDate: &due})
		s.ErrorIs(err, domain.ErrInvalidInput)
	})

	s.Run("return date on an active loan", func() {
		rd := s.today
		_, err := s.svc.AdminUpdate(s.ctx, loan.ID, &AdminUpdateInput{ReturnDate: &rd})
		s.ErrorIs(err, domain.ErrInvalidInput)
	})
}

func (s *LoanServiceSuite) TestListFilters() {
	memberID := s.seedMember(models.MemberStatusActive)
	other := &models.Member{Name: "Sam", Email: "sam@example.com", MembershipStatus: models.MemberStatusActive}
	s.Require().NoError(s.members.Create(s.ctx, other))

	s.borrow(s.seedBook(1), memberID)
	s.borrow(s.seedBook(1), memberID)
	returned := s.borrow(s.seedBook(1), other.ID)
	_, err := s.svc.Return(s.ctx, returned.ID)
	s.Require().NoError(err)

	out, err := s.svc.List(s.ctx, &ListInput{MemberID: &memberID})
	s.Require().NoError(err)
	s.EqualValues(2, out.Total)

	status := models.LoanStatusReturned
	out, err = s.svc.List(s.ctx, &ListInput{Status: &status})
	s.Require().NoError(err)
	s.EqualValues(1, out.Total)
	s.Len(out.Loans, 1)
	s.Equal(returned.ID, out.Loans[0].ID)
}

func (s *LoanServiceSuite) TestListPagination() {
	memberID := s.seedMember(models.MemberStatusActive)
	for i := 0; i < 5; i++ {
		s.borrow(s.seedBook(1), memberID)
	}

	out, err := s.svc.List(s.ctx, &ListInput{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.EqualValues(5, out.Total)
	s.Len(out.Loans, 2)
	s.Equal(3, out.TotalPages)
}

func (s *LoanServiceSuite) TestDueSoon() {
	memberID := s.seedMember(models.MemberStatusActive)

	dueToday := s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -14), s.today)
	dueTomorrow := s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -13), s.today.AddDate(0, 0, 1))
	s.borrowDue(s.seedBook(1), memberID, s.today, s.today.AddDate(0, 0, 14))

	loans, err := s.svc.DueSoon(s.ctx)
	s.Require().NoError(err)
	s.Len(loans, 2)

	ids := []uint{loans[0].ID, loans[1].ID}
	s.Contains(ids, dueToday.ID)
	s.Contains(ids, dueTomorrow.ID)
}

func (s *LoanServiceSuite) TestStatistics() {
	memberID := s.seedMember(models.MemberStatusActive)

	s.borrow(s.seedBook(1), memberID)
	s.borrowDue(s.seedBook(1), memberID, s.today.AddDate(0, 0, -20), s.today.AddDate(0, 0, -5))
	closed := s.borrow(s.seedBook(1), memberID)
	_, err := s.svc.Return(s.ctx, closed.ID)
	s.Require().NoError(err)

	_, err = s.svc.Sweep(s.ctx)
	s.Require().NoError(err)

	counts, err := s.svc.Statistics(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, counts[models.LoanStatusBorrowed])
	s.EqualValues(1, counts[models.LoanStatusOverdue])
	s.EqualValues(1, counts[models.LoanStatusReturned])
}

func (s *LoanServiceSuite) TestInventoryConservation() {
	bookID := s.seedBook(3)
	memberID := s.seedMember(models.MemberStatusActive)
	other := &models.Member{Name: "Sam", Email: "sam@example.com", MembershipStatus: models.MemberStatusActive}
	s.Require().NoError(s.members.Create(s.ctx, other))

	first := s.borrow(bookID, memberID)
	s.borrow(bookID, other.ID)
	s.Equal(1, s.availableCopies(bookID))

	_, err := s.svc.Return(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(2, s.availableCopies(bookID))

	active, err := s.loans.CountActiveByMember(s.ctx, other.ID)
	s.Require().NoError(err)

	book, err := s.books.GetByID(s.ctx, bookID)
	s.Require().NoError(err)
	s.EqualValues(book.TotalCopies, book.AvailableCopies+int(active),
		"available plus on-loan copies must equal the total")
}
