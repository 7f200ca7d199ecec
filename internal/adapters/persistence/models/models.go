package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Catalog Tables
// ============================================================

// Author represents the authors table
type Author struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100" json:"email"`
	Biography string         `gorm:"type:text" json:"biography"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Author) TableName() string {
	return "authors"
}

// AuthorResponse DTO
type AuthorResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Biography string    `json:"biography,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Author) ToResponse() *AuthorResponse {
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Biography: a.Biography,
		CreatedAt: a.CreatedAt,
	}
}

// Book represents the books table. AvailableCopies is mutated only by
// the inventory ledger (BookRepository.Reserve/Release) and must stay
// within [0, TotalCopies].
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null;index" json:"title"`
	Category        string         `gorm:"size:50;not null;index" json:"category"`
	PublishingYear  int            `gorm:"not null" json:"publishing_year"`
	ISBN            string         `gorm:"uniqueIndex;size:20" json:"isbn"`
	Description     string         `gorm:"size:1000" json:"description"`
	TotalCopies     int            `gorm:"not null;default:1" json:"total_copies"`
	AvailableCopies int            `gorm:"not null;default:1" json:"available_copies"`
	AuthorID        uint           `gorm:"not null;index" json:"author_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Author *Author `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	PublishingYear  int       `json:"publishing_year"`
	ISBN            string    `json:"isbn,omitempty"`
	Description     string    `json:"description,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	AuthorID        uint      `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) ToResponse() *BookResponse {
	resp := &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Category:        b.Category,
		PublishingYear:  b.PublishingYear,
		ISBN:            b.ISBN,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		AuthorID:        b.AuthorID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.Author != nil {
		resp.AuthorName = b.Author.Name
	}

	return resp
}

// ============================================================
// Member Tables
// ============================================================

// Membership Status
const (
	MemberStatusActive    = "ACTIVE"
	MemberStatusInactive  = "INACTIVE"
	MemberStatusSuspended = "SUSPENDED"
	MemberStatusExpired   = "EXPIRED"
)

// Member represents the members table
type Member struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	Email            string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone            string         `gorm:"size:20" json:"phone"`
	Address          string         `gorm:"size:300" json:"address"`
	MembershipDate   time.Time      `gorm:"type:date" json:"membership_date"`
	MembershipStatus string         `gorm:"size:20;not null;default:'ACTIVE';index" json:"membership_status"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) IsActive() bool {
	return m.MembershipStatus == MemberStatusActive
}

// MemberResponse DTO
type MemberResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	MembershipDate   time.Time `json:"membership_date"`
	MembershipStatus string    `json:"membership_status"`
	CreatedAt        time.Time `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		Address:          m.Address,
		MembershipDate:   m.MembershipDate,
		MembershipStatus: m.MembershipStatus,
		CreatedAt:        m.CreatedAt,
	}
}

// ============================================================
// Loan Tables
// ============================================================

// Loan Status
const (
	LoanStatusBorrowed = "BORROWED"
	LoanStatusReturned = "RETURNED"
	LoanStatusOverdue  = "OVERDUE"
	LoanStatusLost     = "LOST"
	LoanStatusDamaged  = "DAMAGED"
)

// Loan represents the loans table. BookID and MemberID are plain
// foreign keys; relations are loaded only for response views.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	LoanRef    string     `gorm:"uniqueIndex;size:40;not null" json:"loan_ref"`
	BookID     uint       `gorm:"not null;index" json:"book_id"`
	MemberID   uint       `gorm:"not null;index" json:"member_id"`
	BorrowDate time.Time  `gorm:"type:date;not null;index" json:"borrow_date"`
	DueDate    time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	ReturnDate *time.Time `gorm:"type:date" json:"return_date"`
	Status     string     `gorm:"size:20;not null;default:'BORROWED';index" json:"status"`
	FineAmount float64    `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Book   *Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the loan still holds a book copy.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusBorrowed || l.Status == LoanStatusOverdue
}

// LoanResponse DTO
type LoanResponse struct {
	ID          uint       `json:"id"`
	LoanRef     string     `json:"loan_ref"`
	BookID      uint       `json:"book_id"`
	BookTitle   string     `json:"book_title,omitempty"`
	AuthorName  string     `json:"author_name,omitempty"`
	MemberID    uint       `json:"member_id"`
	MemberName  string     `json:"member_name,omitempty"`
	MemberEmail string     `json:"member_email,omitempty"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date"`
	Status      string     `json:"status"`
	FineAmount  float64    `json:"fine_amount"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		LoanRef:    l.LoanRef,
		BookID:     l.BookID,
		MemberID:   l.MemberID,
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Status:     l.Status,
		FineAmount: l.FineAmount,
		Notes:      l.Notes,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}

	if l.Book != nil {
		resp.BookTitle = l.Book.Title
		if l.Book.Author != nil {
			resp.AuthorName = l.Book.Author.Name
		}
	}
	if l.Member != nil {
		resp.MemberName = l.Member.Name
		resp.MemberEmail = l.Member.Email
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Author{},
		&Book{},
		&Member{},
		&Loan{},
	)
}
