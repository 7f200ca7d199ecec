package repositories

import (
	"context"
	"errors"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/core/domain"

	"gorm.io/gorm"
)

// GormAuthorRepository handles author data access
type GormAuthorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

// Create creates a new author
func (r *GormAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	return conn(ctx, r.db).Create(author).Error
}

// GetByID gets an author by ID
func (r *GormAuthorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	err := conn(ctx, r.db).First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// List lists authors with pagination
func (r *GormAuthorRepository) List(ctx context.Context, offset, limit int) ([]*models.Author, int64, error) {
	var authors []*models.Author
	var total int64

	conn(ctx, r.db).Model(&models.Author{}).Count(&total)

	err := conn(ctx, r.db).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error

	return authors, total, err
}

// Update updates an author
func (r *GormAuthorRepository) Update(ctx context.Context, author *models.Author) error {
	return conn(ctx, r.db).Save(author).Error
}

// Delete soft deletes an author
func (r *GormAuthorRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Author{}, id).Error
}
