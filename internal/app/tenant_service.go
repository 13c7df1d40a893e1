package app

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"legalresearch/internal/model"
	"legalresearch/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validTiers = map[string]bool{
	model.TierFree:       true,
	model.TierPro:        true,
	model.TierEnterprise: true,
}

var validRoles = map[string]bool{
	model.RoleLawyer:    true,
	model.RoleParalegal: true,
	model.RoleAdmin:     true,
}

// TenantService owns organization and user lifecycle: onboarding, tier
// changes, and the irreversible cascade teardown.
type TenantService struct {
	orgRepo  *repository.OrganizationRepository
	userRepo *repository.UserRepository
}

func NewTenantService(orgRepo *repository.OrganizationRepository, userRepo *repository.UserRepository) *TenantService {
	return &TenantService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

type CreateOrganizationInput struct {
	Name string
	Slug string
	Tier string
}

// CreateOrganization is create-if-absent on the slug: a second call with an
// already-taken slug returns the existing organization, no error, no
// duplicate row. Callers can detect reuse by comparing ids.
func (s *TenantService) CreateOrganization(input CreateOrganizationInput) (*model.Organization, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	tier := strings.TrimSpace(input.Tier)
	if tier == "" {
		tier = model.TierFree
	}
	if name == "" || !slugPattern.MatchString(slug) || !validTiers[tier] {
		return nil, ErrInvalidInput
	}

	org := &model.Organization{
		Name:             name,
		Slug:             slug,
		SubscriptionTier: tier,
	}
	if err := s.orgRepo.Create(org); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.orgRepo.GetBySlug(slug)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return org, nil
}

type CreateUserInput struct {
	Email          string
	FullName       string
	OrganizationID string
	Role           string
	Password       string
}

// CreateUser attaches a user to an existing organization. Like organization
// creation it is create-if-absent on the globally unique email: a duplicate
// returns the existing user unchanged.
func (s *TenantService) CreateUser(input CreateUserInput) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = model.RoleLawyer
	}
	if email == "" || !strings.Contains(email, "@") || fullName == "" || !validRoles[role] {
		return nil, ErrInvalidInput
	}
	if input.OrganizationID == "" {
		return nil, ErrOrganizationNotFound
	}

	org, err := s.orgRepo.GetByID(input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	user := &model.User{
		Email:          email,
		FullName:       fullName,
		OrganizationID: org.ID,
		Role:           role,
	}
	if password := strings.TrimSpace(input.Password); password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("hash password failed: %w", hashErr)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.userRepo.GetByEmail(email)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return user, nil
}

func (s *TenantService) GetOrganization(id string) (*model.Organization, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	org, err := s.orgRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	return org, nil
}

func (s *TenantService) UpdateTier(id, tier string) error {
	if id == "" || !validTiers[tier] {
		return ErrInvalidInput
	}
	if err := s.orgRepo.UpdateTier(id, tier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	return nil
}

func (s *TenantService) ListUsers(organizationID string) ([]model.User, error) {
	if organizationID == "" {
		return nil, ErrInvalidInput
	}
	return s.userRepo.ListByOrganizationID(organizationID)
}

// DeleteOrganization is a hard tenant teardown: users, documents and the
// query audit log all go with it, synchronously, in one transaction. There is
// no undo path; callers needing reversibility must soft-delete above this
// layer.
func (s *TenantService) DeleteOrganization(id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.orgRepo.DeleteCascade(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	return nil
}
