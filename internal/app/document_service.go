package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"legalresearch/internal/model"
	"legalresearch/internal/platform/rabbitmq"
	"legalresearch/internal/repository"
)

var validDocumentTypes = map[string]bool{
	model.DocTypeCaseLaw:  true,
	model.DocTypeStatute:  true,
	model.DocTypeBrief:    true,
	model.DocTypeContract: true,
}

// statusPredecessors encodes the monotonic pending -> processing ->
// {completed|failed} progression as the set of states each target may be
// reached from.
var statusPredecessors = map[string][]string{
	model.StatusProcessing: {model.StatusPending},
	model.StatusCompleted:  {model.StatusProcessing},
	model.StatusFailed:     {model.StatusPending, model.StatusProcessing},
}

// IngestEventPublisher notifies the external processing pipeline after a
// document row commits. A nil publisher disables notification.
type IngestEventPublisher interface {
	Publish(ctx context.Context, event rabbitmq.DocumentIngestedEvent) error
}

type DocumentService struct {
	orgRepo   *repository.OrganizationRepository
	docRepo   *repository.DocumentRepository
	publisher IngestEventPublisher
}

func NewDocumentService(
	orgRepo *repository.OrganizationRepository,
	docRepo *repository.DocumentRepository,
	publisher IngestEventPublisher,
) *DocumentService {
	return &DocumentService{
		orgRepo:   orgRepo,
		docRepo:   docRepo,
		publisher: publisher,
	}
}

// LegalMetadata is what the platform knows about a document as a legal
// artifact; it usually arrives incomplete at ingest time and is enriched by
// the external pipeline later.
type LegalMetadata struct {
	Citation      string
	CourtName     string
	CourtLevel    string
	Jurisdiction  string
	BenchStrength int
	Judges        []string
	DecisionDate  *time.Time
	FilingDate    *time.Time
}

type ContentMetadata struct {
	PartyNames    []string
	StatutesCited []string
	SectionsCited []string
	CaseNumbers   []string
}

type IngestDocumentInput struct {
	OrganizationID string
	Title          string
	DocumentType   string
	StorageRef     string
	FileSizeBytes  int64
	Legal          LegalMetadata
	Content        ContentMetadata
}

// Ingest creates the document in its initial lifecycle state (pending, not
// vector-indexed) and emits an event for the processing pipeline. The event
// is best-effort: a broker hiccup never rolls back the committed row.
func (s *DocumentService) Ingest(ctx context.Context, input IngestDocumentInput) (*model.Document, error) {
	title := strings.TrimSpace(input.Title)
	storageRef := strings.TrimSpace(input.StorageRef)
	if title == "" || storageRef == "" || !validDocumentTypes[input.DocumentType] {
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

	doc := &model.Document{
		OrganizationID:   org.ID,
		Title:            title,
		DocumentType:     input.DocumentType,
		StorageRef:       storageRef,
		FileSizeBytes:    input.FileSizeBytes,
		Citation:         strings.TrimSpace(input.Legal.Citation),
		CourtName:        strings.TrimSpace(input.Legal.CourtName),
		CourtLevel:       strings.TrimSpace(input.Legal.CourtLevel),
		Jurisdiction:     strings.TrimSpace(input.Legal.Jurisdiction),
		BenchStrength:    input.Legal.BenchStrength,
		Judges:           input.Legal.Judges,
		DecisionDate:     input.Legal.DecisionDate,
		FilingDate:       input.Legal.FilingDate,
		PartyNames:       input.Content.PartyNames,
		StatutesCited:    input.Content.StatutesCited,
		SectionsCited:    input.Content.SectionsCited,
		CaseNumbers:      input.Content.CaseNumbers,
		ProcessingStatus: model.StatusPending,
		VectorIndexed:    false,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := rabbitmq.DocumentIngestedEvent{
			DocumentID:     doc.ID,
			OrganizationID: doc.OrganizationID,
			DocumentType:   doc.DocumentType,
			StorageRef:     doc.StorageRef,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("publish document ingested event failed: %v", err)
		}
	}
	return doc, nil
}

// UpdateProcessingStatus advances the pipeline state machine. The transition
// runs as a compare-and-set against the allowed predecessor states, so a
// stale worker observes ErrInvalidState instead of silently overwriting a
// newer state. Another tenant's document id reports ErrDocumentNotFound, not
// ErrInvalidState, so foreign lifecycles stay invisible.
func (s *DocumentService) UpdateProcessingStatus(organizationID, documentID, status string) error {
	if organizationID == "" || documentID == "" {
		return ErrInvalidInput
	}
	from, ok := statusPredecessors[status]
	if !ok {
		return ErrInvalidInput
	}

	updated, err := s.docRepo.UpdateStatusFrom(organizationID, documentID, from, status)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	doc, err := s.docRepo.GetStatus(documentID)
	if err != nil {
		return err
	}
	if doc == nil || doc.OrganizationID != organizationID {
		return ErrDocumentNotFound
	}
	return ErrInvalidState
}

// MarkVectorIndexed records that the external embedding step succeeded. Only
// valid once processing has completed.
func (s *DocumentService) MarkVectorIndexed(organizationID, documentID string) error {
	if organizationID == "" || documentID == "" {
		return ErrInvalidInput
	}

	updated, err := s.docRepo.MarkVectorIndexed(organizationID, documentID)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	doc, err := s.docRepo.GetStatus(documentID)
	if err != nil {
		return err
	}
	if doc == nil || doc.OrganizationID != organizationID {
		return ErrDocumentNotFound
	}
	if doc.VectorIndexed {
		// Already indexed; the flag is sticky and re-marking is harmless.
		return nil
	}
	return ErrInvalidState
}

func (s *DocumentService) Get(organizationID, documentID string) (*model.Document, error) {
	if organizationID == "" || documentID == "" {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(organizationID, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Find lists documents for one tenant. Filters only ever narrow within the
// organization scope.
func (s *DocumentService) Find(organizationID string, filter repository.DocumentFilter) ([]model.Document, error) {
	if organizationID == "" {
		return nil, ErrInvalidInput
	}
	return s.docRepo.Find(organizationID, filter)
}

// Delete removes one document. Queries that retrieved it keep their dangling
// ids; audit history must survive document deletion.
func (s *DocumentService) Delete(organizationID, documentID string) error {
	if organizationID == "" || documentID == "" {
		return ErrInvalidInput
	}
	if err := s.docRepo.Delete(organizationID, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}
