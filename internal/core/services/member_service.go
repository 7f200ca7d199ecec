package services

import (
	"context"
	"errors"
	"time"

	"libralend/internal/adapters/persistence/models"
	"libralend/internal/adapters/persistence/repositories"
	"libralend/internal/core/domain"
)

// MemberService handles member management
type MemberService struct {
	memberRepo  repositories.MemberRepository
	loanRepo    repositories.LoanRepository
	eligibility *EligibilityChecker
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo repositories.MemberRepository,
	loanRepo repositories.LoanRepository,
	eligibility *EligibilityChecker,
) *MemberService {
	return &MemberService{
		memberRepo:  memberRepo,
		loanRepo:    loanRepo,
		eligibility: eligibility,
	}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	MembershipStatus string `json:"membership_status,omitempty"`
}

// Create registers a new member with a unique email
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	existing, err := s.memberRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEntry
	}

	status := input.MembershipStatus
	if status == "" {
		status = models.MemberStatusActive
	}
	if !validMemberStatus(status) {
		return nil, domain.ErrInvalidInput
	}

	member := &models.Member{
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Address:          input.Address,
		MembershipDate:   time.Now(),
		MembershipStatus: status,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

// GetByEmail gets a member by email
func (s *MemberService) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.memberRepo.GetByEmail(ctx, email)
}

// Search finds members by name or email fragment
func (s *MemberService) Search(ctx context.Context, term string) ([]*models.Member, error) {
	return s.memberRepo.Search(ctx, term)
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit)
}

// UpdateMemberInput represents update member input
type UpdateMemberInput struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty"`
	MembershipStatus *string `json:"membership_status,omitempty"`
}

// Update patches member fields
func (s *MemberService) Update(ctx context.Context, id uint, input *UpdateMemberInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != member.Email {
		existing, err := s.memberRepo.GetByEmail(ctx, *input.Email)
		if err != nil && !errors.Is(err, domain.ErrMemberNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateEntry
		}
		member.Email = *input.Email
	}

	if input.Name != nil {
		member.Name = *input.Name
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.Address != nil {
		member.Address = *input.Address
	}
	if input.MembershipStatus != nil {
		if !validMemberStatus(*input.MembershipStatus) {
			return nil, domain.ErrInvalidInput
		}
		member.MembershipStatus = *input.MembershipStatus
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// Delete removes a member. A member with active loans cannot be removed
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	if _, err := s.memberRepo.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.loanRepo.CountActiveByMember(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrInvalidInput
	}

	return s.memberRepo.Delete(ctx, id)
}

// MemberSummary represents a member's borrowing position
type MemberSummary struct {
	Member           *models.MemberResponse `json:"member"`
	ActiveLoans      int64                  `json:"active_loans"`
	OutstandingFines float64                `json:"outstanding_fines"`
}

// Summary reports a member's active loan count and outstanding fines
func (s *MemberService) Summary(ctx context.Context, id uint) (*MemberSummary, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.loanRepo.CountActiveByMember(ctx, id)
	if err != nil {
		return nil, err
	}

	fines, err := s.eligibility.OutstandingFines(ctx, id)
	if err != nil {
		return nil, err
	}

	return &MemberSummary{
		Member:           member.ToResponse(),
		ActiveLoans:      active,
		OutstandingFines: fines,
	}, nil
}

func validMemberStatus(status string) bool {
	switch status {
	case models.MemberStatusActive,
		models.MemberStatusInactive,
		models.MemberStatusSuspended,
		models.MemberStatusExpired:
		return true
	}
	return false
}
