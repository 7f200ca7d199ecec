package repositories

import (
	"context"
	"errors"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/core/domain"

	"gorm.io/gorm"
)

// GormMemberRepository handles member data access
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Create creates a new member
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	return conn(ctx, r.db).Create(member).Error
}

// GetByID gets a member by ID
func (r *GormMemberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := conn(ctx, r.db).First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetByEmail gets a member by email
func (r *GormMemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	err := conn(ctx, r.db).Where("email = ?", email).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Search finds members whose name or email contains the term
func (r *GormMemberRepository) Search(ctx context.Context, term string) ([]*models.Member, error) {
	var members []*models.Member
	pattern := "%" + term + "%"
	err := conn(ctx, r.db).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

// List lists members with pagination
func (r *GormMemberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	conn(ctx, r.db).Model(&models.Member{}).Count(&total)

	err := conn(ctx, r.db).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// Update updates a member
func (r *GormMemberRepository) Update(ctx context.Context, member *models.Member) error {
	return conn(ctx, r.db).Save(member).Error
}

// Delete soft deletes a member
func (r *GormMemberRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Member{}, id).Error
}
