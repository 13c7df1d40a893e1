package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legalresearch/internal/model"
)

// QueryListOptions narrows a tenant-scoped audit log listing.
type QueryListOptions struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type QueryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) Create(q *model.Query) error {
	if err := r.db.Create(q).Error; err != nil {
		return fmt.Errorf("create query failed: %w", err)
	}
	return nil
}

func (r *QueryRepository) GetByID(organizationID, id string) (*model.Query, error) {
	var q model.Query
	if err := r.db.Where("organization_id = ? AND id = ?", organizationID, id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get query failed: %w", err)
	}
	return &q, nil
}

func (r *QueryRepository) List(organizationID string, opts QueryListOptions) ([]model.Query, error) {
	q := r.db.Where("organization_id = ?", organizationID)
	if opts.UserID != "" {
		q = q.Where("user_id = ?", opts.UserID)
	}
	if opts.From != nil {
		q = q.Where("created_at >= ?", *opts.From)
	}
	if opts.To != nil {
		q = q.Where("created_at <= ?", *opts.To)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	var list []model.Query
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list queries failed: %w", err)
	}
	return list, nil
}

// UpdateFeedback writes only the feedback pair; every other column of the
// audit row stays untouched.
func (r *QueryRepository) UpdateFeedback(organizationID, id string, score int, text string) error {
	res := r.db.Model(&model.Query{}).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Select("feedback_score", "feedback_text").
		Updates(model.Query{FeedbackScore: &score, FeedbackText: &text})
	if res.Error != nil {
		return fmt.Errorf("update query feedback failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QueryRepository) CountByOrganizationID(organizationID string) (int64, error) {
	var n int64
	if err := r.db.Model(&model.Query{}).Where("organization_id = ?", organizationID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count queries failed: %w", err)
	}
	return n, nil
}

// AverageTotalLatencyMS returns 0 for an organization with no queries.
func (r *QueryRepository) AverageTotalLatencyMS(organizationID string) (float64, error) {
	var avg *float64
	if err := r.db.Model(&model.Query{}).
		Where("organization_id = ?", organizationID).
		Select("AVG(total_latency_ms)").Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("average query latency failed: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
