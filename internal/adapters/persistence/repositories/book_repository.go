package repositories

import (
	"context"
	"errors"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/core/domain"

	"gorm.io/gorm"
)

// GormBookRepository handles book data access
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// Create creates a new book
func (r *GormBookRepository) Create(ctx context.Context, book *models.Book) error {
	return conn(ctx, r.db).Create(book).Error
}

// GetByID gets a book by ID with its author
func (r *GormBookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := conn(ctx, r.db).
		Preload("Author").
		First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// List lists books with pagination
func (r *GormBookRepository) List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	conn(ctx, r.db).Model(&models.Book{}).Count(&total)

	err := conn(ctx, r.db).
		Preload("Author").
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Search finds books matching the filter; empty fields are ignored
func (r *GormBookRepository) Search(ctx context.Context, filter *BookSearchFilter) ([]*models.Book, error) {
	query := conn(ctx, r.db).
		Model(&models.Book{}).
		Preload("Author").
		Joins("LEFT JOIN authors ON authors.id = books.author_id")

	if filter.Title != "" {
		query = query.Where("LOWER(books.title) LIKE LOWER(?)", "%"+filter.Title+"%")
	}
	if filter.Category != "" {
		query = query.Where("LOWER(books.category) = LOWER(?)", filter.Category)
	}
	if filter.AuthorName != "" {
		query = query.Where("LOWER(authors.name) LIKE LOWER(?)", "%"+filter.AuthorName+"%")
	}
	if filter.PublishingYear != 0 {
		query = query.Where("books.publishing_year = ?", filter.PublishingYear)
	}

	var books []*models.Book
	err := query.Order("books.title ASC").Find(&books).Error
	return books, err
}

// ListAvailable lists books with at least one available copy
func (r *GormBookRepository) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := conn(ctx, r.db).
		Preload("Author").
		Where("available_copies > 0").
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// ListCategories lists all distinct book categories
func (r *GormBookRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := conn(ctx, r.db).
		Model(&models.Book{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Update updates a book
func (r *GormBookRepository) Update(ctx context.Context, book *models.Book) error {
	return conn(ctx, r.db).Save(book).Error
}

// Delete soft deletes a book
func (r *GormBookRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Book{}, id).Error
}

// Reserve takes one available copy of the book. The conditional update
// is the serialization point for concurrent borrows: of two requests
// racing for the last copy, exactly one changes a row.
func (r *GormBookRepository) Reserve(ctx context.Context, bookID uint) error {
	res := conn(ctx, r.db).
		Model(&models.Book{}).
		Where("id = ? AND available_copies > 0", bookID).
		UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientCopies
	}
	return nil
}

// Release puts one copy of the book back, refusing to exceed the total
func (r *GormBookRepository) Release(ctx context.Context, bookID uint) error {
	res := conn(ctx, r.db).
		Model(&models.Book{}).
		Where("id = ? AND available_copies < total_copies", bookID).
		UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOverCapacity
	}
	return nil
}
