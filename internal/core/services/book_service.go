package services

import (
	"context"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/core/domain"
)

// BookService handles book catalog management
type BookService struct {
	bookRepo   repositories.BookRepository
	authorRepo repositories.AuthorRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository, authorRepo repositories.AuthorRepository) *BookService {
	return &BookService{
		bookRepo:   bookRepo,
		authorRepo: authorRepo,
	}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Title          string `json:"title" validate:"required,max=200"`
	Category       string `json:"category" validate:"required,max=50"`
	PublishingYear int    `json:"publishing_year" validate:"required,min=1000"`
	ISBN           string `json:"isbn,omitempty" validate:"max=20"`
	Description    string `json:"description,omitempty" validate:"max=1000"`
	TotalCopies    int    `json:"total_copies"`
	AuthorID       uint   `json:"author_id" validate:"required"`
}

// Create creates a new book; all copies start available
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	if _, err := s.authorRepo.GetByID(ctx, input.AuthorID); err != nil {
		return nil, err
	}

	totalCopies := input.TotalCopies
	if totalCopies < 1 {
		totalCopies = 1
	}

	book := &models.Book{
		Title:           input.Title,
		Category:        input.Category,
		PublishingYear:  input.PublishingYear,
		ISBN:            input.ISBN,
		Description:     input.Description,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		AuthorID:        input.AuthorID,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return s.bookRepo.GetByID(ctx, book.ID)
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// List lists books with pagination
func (s *BookService) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, offset, limit)
}

// Search finds books by title, category, author name or publishing year
func (s *BookService) Search(ctx context.Context, filter *repositories.BookSearchFilter) ([]*models.Book, error) {
	return s.bookRepo.Search(ctx, filter)
}

// ListAvailable lists books with at least one copy on the shelf
func (s *BookService) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	return s.bookRepo.ListAvailable(ctx)
}

// ListCategories lists all distinct categories
func (s *BookService) ListCategories(ctx context.Context) ([]string, error) {
	return s.bookRepo.ListCategories(ctx)
}

// UpdateBookInput represents update book input
type UpdateBookInput struct {
	Title          *string `json:"title,omitempty"`
	Category       *string `json:"category,omitempty"`
	PublishingYear *int    `json:"publishing_year,omitempty"`
	ISBN           *string `json:"isbn,omitempty"`
	Description    *string `json:"description,omitempty"`
	TotalCopies    *int    `json:"total_copies,omitempty"`
	AuthorID       *uint   `json:"author_id,omitempty"`
}

// Update patches book fields. Growing or shrinking TotalCopies adjusts
// AvailableCopies by the same amount, refusing changes that would make
// the ledger inconsistent with outstanding loans.
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.AuthorID != nil && *input.AuthorID != book.AuthorID {
		if _, err := s.authorRepo.GetByID(ctx, *input.AuthorID); err != nil {
			return nil, err
		}
		book.AuthorID = *input.AuthorID
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Category != nil {
		book.Category = *input.Category
	}
	if input.PublishingYear != nil {
		book.PublishingYear = *input.PublishingYear
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.TotalCopies != nil {
		delta := *input.TotalCopies - book.TotalCopies
		newAvailable := book.AvailableCopies + delta
		if *input.TotalCopies < 1 || newAvailable < 0 {
			return nil, domain.ErrInvalidInput
		}
		book.TotalCopies = *input.TotalCopies
		book.AvailableCopies = newAvailable
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return s.bookRepo.GetByID(ctx, book.ID)
}

// Delete removes a book from the catalog
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}
