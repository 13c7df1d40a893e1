package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	IntentCaseLookup      = "case_lookup"
	IntentStatuteLookup   = "statute_lookup"
	IntentGeneralResearch = "general_research"
)

// Query is one row of the append-only search audit log. OrganizationID is a
// denormalized copy of the issuing user's organization, kept for isolation and
// reporting. RetrievedDocIDs is a weak reference: documents may be deleted
// later and the ids left dangling. The only permitted post-creation mutation
// is the feedback pair.
type Query struct {
	ID             string `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string `gorm:"type:char(36);not null;index" json:"user_id"`
	OrganizationID string `gorm:"type:char(36);not null;index" json:"organization_id"`

	QueryText string  `gorm:"type:text;not null" json:"query_text"`
	Intent    *string `gorm:"size:32" json:"intent,omitempty"`

	RetrievedDocIDs datatypes.JSONSlice[string] `json:"retrieved_doc_ids,omitempty"`
	ResponseText    string                      `gorm:"type:text" json:"response_text"`
	CitationsUsed   datatypes.JSONSlice[string] `json:"citations_used,omitempty"`

	RetrievalLatencyMS  int `json:"retrieval_latency_ms"`
	GenerationLatencyMS int `json:"generation_latency_ms"`
	TotalLatencyMS      int `json:"total_latency_ms"`
	TokenCount          int `json:"token_count"`

	FeedbackScore *int    `json:"feedback_score,omitempty"`
	FeedbackText  *string `gorm:"type:text" json:"feedback_text,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (q *Query) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
