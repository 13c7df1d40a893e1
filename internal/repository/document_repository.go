package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legalresearch/internal/model"
)

// DocumentFilter narrows a tenant-scoped document lookup. All set fields are
// AND-ed together; the organization predicate is supplied separately and is
// never optional.
type DocumentFilter struct {
	DocumentType     string
	CourtName        string
	CourtLevel       string
	Citation         string // exact match
	CitationPrefix   string
	DecidedFrom      *time.Time
	DecidedTo        *time.Time
	Year             int
	ProcessingStatus string
	Limit            int
	Offset           int
}

// DocumentRepository is the only path to document rows. Every read method
// takes the organization id as its first parameter, so an unscoped query is
// not expressible.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(organizationID, id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("organization_id = ? AND id = ?", organizationID, id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) Find(organizationID string, filter DocumentFilter) ([]model.Document, error) {
	q := r.db.Where("organization_id = ?", organizationID)
	if filter.DocumentType != "" {
		q = q.Where("document_type = ?", filter.DocumentType)
	}
	if filter.CourtName != "" {
		q = q.Where("court_name = ?", filter.CourtName)
	}
	if filter.CourtLevel != "" {
		q = q.Where("court_level = ?", filter.CourtLevel)
	}
	if filter.Citation != "" {
		q = q.Where("citation = ?", filter.Citation)
	}
	if filter.CitationPrefix != "" {
		q = q.Where("citation LIKE ?", escapeLike(filter.CitationPrefix)+"%")
	}
	if filter.DecidedFrom != nil {
		q = q.Where("decision_date >= ?", *filter.DecidedFrom)
	}
	if filter.DecidedTo != nil {
		q = q.Where("decision_date <= ?", *filter.DecidedTo)
	}
	if filter.Year > 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("decision_date >= ? AND decision_date < ?", start, start.AddDate(1, 0, 0))
	}
	if filter.ProcessingStatus != "" {
		q = q.Where("processing_status = ?", filter.ProcessingStatus)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var list []model.Document
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) CountByOrganizationID(organizationID string) (int64, error) {
	var n int64
	if err := r.db.Model(&model.Document{}).Where("organization_id = ?", organizationID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return n, nil
}

// UpdateStatusFrom advances processing_status with a compare-and-set so racing
// pipeline workers cannot clobber each other. The organization predicate rides
// in the same UPDATE, so a caller holding another tenant's document id matches
// nothing. Returns false when the document was not in any of the expected
// from-states (or does not exist in this organization).
func (r *DocumentRepository) UpdateStatusFrom(organizationID, id string, from []string, to string) (bool, error) {
	res := r.db.Model(&model.Document{}).
		Where("organization_id = ? AND id = ? AND processing_status IN ?", organizationID, id, from).
		Update("processing_status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update processing status failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkVectorIndexed flips the flag only while the document is completed,
// preserving the vector_indexed => completed invariant at the storage level.
func (r *DocumentRepository) MarkVectorIndexed(organizationID, id string) (bool, error) {
	res := r.db.Model(&model.Document{}).
		Where("organization_id = ? AND id = ? AND processing_status = ?", organizationID, id, model.StatusCompleted).
		Update("vector_indexed", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark vector indexed failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetStatus reads the current lifecycle fields without tenant scope; it exists
// only so writers can distinguish a missing document from an illegal
// transition after a compare-and-set matched nothing.
func (r *DocumentRepository) GetStatus(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Select("id", "organization_id", "processing_status", "vector_indexed").
		Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document status failed: %w", err)
	}
	return &doc, nil
}

// Delete removes a single document. Historical queries keep their now-dangling
// retrieved_doc_ids entries; the audit log is never touched here.
func (r *DocumentRepository) Delete(organizationID, id string) error {
	res := r.db.Where("organization_id = ? AND id = ?", organizationID, id).Delete(&model.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete document failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
