package services

import (
	"context"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
)

// AuthorService handles author management
type AuthorService struct {
	authorRepo repositories.AuthorRepository
}

// NewAuthorService creates a new author service
func NewAuthorService(authorRepo repositories.AuthorRepository) *AuthorService {
	return &AuthorService{authorRepo: authorRepo}
}

// CreateAuthorInput represents create author input
type CreateAuthorInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"email"`
	Biography string `json:"biography,omitempty"`
}

// Create creates a new author
func (s *AuthorService) Create(ctx context.Context, input *CreateAuthorInput) (*models.Author, error) {
	author := &models.Author{
		Name:      input.Name,
		Email:     input.Email,
		Biography: input.Biography,
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}

	return author, nil
}

// GetByID gets an author by ID
func (s *AuthorService) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	return s.authorRepo.GetByID(ctx, id)
}

// List lists authors with pagination
func (s *AuthorService) List(ctx context.Context, offset, limit int) ([]*models.Author, int64, error) {
	return s.authorRepo.List(ctx, offset, limit)
}

// UpdateAuthorInput represents update author input
type UpdateAuthorInput struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Biography *string `json:"biography,omitempty"`
}

// Update patches author fields
func (s *AuthorService) Update(ctx context.Context, id uint, input *UpdateAuthorInput) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		author.Name = *input.Name
	}
	if input.Email != nil {
		author.Email = *input.Email
	}
	if input.Biography != nil {
		author.Biography = *input.Biography
	}

	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, err
	}

	return author, nil
}

// Delete removes an author
func (s *AuthorService) Delete(ctx context.Context, id uint) error {
	if _, err := s.authorRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.authorRepo.Delete(ctx, id)
}
