package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"legalresearch/internal/app"
	"legalresearch/internal/repository"
	"legalresearch/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
}

type IngestDocumentRequest struct {
	Title         string `json:"title" binding:"required,max=512"`
	DocumentType  string `json:"document_type" binding:"required,max=32"`
	StorageRef    string `json:"storage_ref" binding:"required,max=1024"`
	FileSizeBytes int64  `json:"file_size_bytes" binding:"omitempty,min=0"`

	Citation      string     `json:"citation"`
	CourtName     string     `json:"court_name"`
	CourtLevel    string     `json:"court_level"`
	Jurisdiction  string     `json:"jurisdiction"`
	BenchStrength int        `json:"bench_strength"`
	Judges        []string   `json:"judges"`
	DecisionDate  *time.Time `json:"decision_date"`
	FilingDate    *time.Time `json:"filing_date"`

	PartyNames    []string `json:"party_names"`
	StatutesCited []string `json:"statutes_cited"`
	SectionsCited []string `json:"sections_cited"`
	CaseNumbers   []string `json:"case_numbers"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,max=16"`
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Ingest(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req IngestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.documentService.Ingest(c.Request.Context(), app.IngestDocumentInput{
		OrganizationID: orgID,
		Title:          req.Title,
		DocumentType:   req.DocumentType,
		StorageRef:     req.StorageRef,
		FileSizeBytes:  req.FileSizeBytes,
		Legal: app.LegalMetadata{
			Citation:      req.Citation,
			CourtName:     req.CourtName,
			CourtLevel:    req.CourtLevel,
			Jurisdiction:  req.Jurisdiction,
			BenchStrength: req.BenchStrength,
			Judges:        req.Judges,
			DecisionDate:  req.DecisionDate,
			FilingDate:    req.FilingDate,
		},
		Content: app.ContentMetadata{
			PartyNames:    req.PartyNames,
			StatutesCited: req.StatutesCited,
			SectionsCited: req.SectionsCited,
			CaseNumbers:   req.CaseNumbers,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrOrganizationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest document failed")
		}
		return
	}
	response.OK(c, doc)
}

// List serves the tenant-scoped document search; every filter combines with
// the organization scope taken from the token.
func (h *DocumentHandler) List(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	filter := repository.DocumentFilter{
		DocumentType:     c.Query("document_type"),
		CourtName:        c.Query("court_name"),
		CourtLevel:       c.Query("court_level"),
		Citation:         c.Query("citation"),
		CitationPrefix:   c.Query("citation_prefix"),
		ProcessingStatus: c.Query("processing_status"),
		Year:             parseIntQuery(c, "year"),
		Limit:            parseIntQuery(c, "limit"),
		Offset:           parseIntQuery(c, "offset"),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("decided_from")); err == nil {
		filter.DecidedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("decided_to")); err == nil {
		filter.DecidedTo = &to
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	docs, err := h.documentService.Find(orgID, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	doc, err := h.documentService.Get(orgID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch document failed")
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID := c.Param("id")
	if err := h.documentService.Delete(orgID, docID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

// UpdateStatus is the HTTP fallback for pipeline deployments that cannot
// reach the status queue.
func (h *DocumentHandler) UpdateStatus(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.documentService.UpdateProcessingStatus(orgID, c.Param("id"), req.Status); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidState):
			response.Error(c, http.StatusConflict, response.CodeInvalidState, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update status failed")
		}
		return
	}
	response.OK(c, gin.H{"document_id": c.Param("id"), "status": req.Status})
}

func (h *DocumentHandler) MarkVectorIndexed(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.documentService.MarkVectorIndexed(orgID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidState):
			response.Error(c, http.StatusConflict, response.CodeInvalidState, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "mark vector indexed failed")
		}
		return
	}
	response.OK(c, gin.H{"document_id": c.Param("id"), "vector_indexed": true})
}

func parseIntQuery(c *gin.Context, key string) int {
	s := c.Query(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
