package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"legalresearch/internal/model"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts the organization. A slug collision surfaces as
// gorm.ErrDuplicatedKey for the caller to resolve.
func (r *OrganizationRepository) Create(org *model.Organization) error {
	if err := r.db.Create(org).Error; err != nil {
		return fmt.Errorf("create organization failed: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.Where("id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query organization by id failed: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) GetBySlug(slug string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query organization by slug failed: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) UpdateTier(id, tier string) error {
	res := r.db.Model(&model.Organization{}).Where("id = ?", id).Update("subscription_tier", tier)
	if res.Error != nil {
		return fmt.Errorf("update organization tier failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes the organization and everything it owns in a single
// transaction: queries first, then users and documents, then the organization
// itself. Either the whole teardown commits or none of it does.
func (r *OrganizationRepository) DeleteCascade(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).Delete(&model.Query{}).Error; err != nil {
			return fmt.Errorf("cascade delete queries failed: %w", err)
		}
		if err := tx.Where("organization_id = ?", id).Delete(&model.User{}).Error; err != nil {
			return fmt.Errorf("cascade delete users failed: %w", err)
		}
		if err := tx.Where("organization_id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("cascade delete documents failed: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Organization{})
		if res.Error != nil {
			return fmt.Errorf("delete organization failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
