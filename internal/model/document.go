package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DocTypeCaseLaw  = "case_law"
	DocTypeStatute  = "statute"
	DocTypeBrief    = "brief"
	DocTypeContract = "contract"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document holds a legal document's retrieval metadata and processing state.
// File content lives behind StorageRef; array-valued fields are ordered string
// lists embedded as JSON, owned entirely by the document.
type Document struct {
	ID             string `gorm:"type:char(36);primaryKey" json:"id"`
	OrganizationID string `gorm:"type:char(36);not null;index" json:"organization_id"`
	Title          string `gorm:"size:512;not null" json:"title"`
	DocumentType   string `gorm:"size:32;not null;index" json:"document_type"`
	StorageRef     string `gorm:"size:1024;not null" json:"storage_ref"`
	FileSizeBytes  int64  `json:"file_size_bytes"`

	Citation      string                      `gorm:"size:255;index" json:"citation,omitempty"`
	CourtName     string                      `gorm:"size:255;index" json:"court_name,omitempty"`
	CourtLevel    string                      `gorm:"size:64" json:"court_level,omitempty"`
	Jurisdiction  string                      `gorm:"size:128" json:"jurisdiction,omitempty"`
	BenchStrength int                         `json:"bench_strength,omitempty"`
	Judges        datatypes.JSONSlice[string] `json:"judges,omitempty"`
	DecisionDate  *time.Time                  `gorm:"index" json:"decision_date,omitempty"`
	FilingDate    *time.Time                  `json:"filing_date,omitempty"`

	PartyNames    datatypes.JSONSlice[string] `json:"party_names,omitempty"`
	StatutesCited datatypes.JSONSlice[string] `json:"statutes_cited,omitempty"`
	SectionsCited datatypes.JSONSlice[string] `json:"sections_cited,omitempty"`
	CaseNumbers   datatypes.JSONSlice[string] `json:"case_numbers,omitempty"`

	// VectorIndexed may only be set once ProcessingStatus is completed.
	ProcessingStatus string `gorm:"size:16;not null;default:pending" json:"processing_status"`
	VectorIndexed    bool   `gorm:"not null;default:false" json:"vector_indexed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
