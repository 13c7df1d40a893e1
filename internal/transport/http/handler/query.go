package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legalresearch/internal/app"
	"legalresearch/internal/repository"
	"legalresearch/internal/transport/http/response"
)

type QueryHandler struct {
	queryService *app.QueryService
}

type RecordQueryRequest struct {
	QueryText       string   `json:"query_text" binding:"required"`
	Intent          string   `json:"intent" binding:"omitempty,max=32"`
	RetrievedDocIDs []string `json:"retrieved_doc_ids"`
	ResponseText    string   `json:"response_text"`
	CitationsUsed   []string `json:"citations_used"`

	RetrievalLatencyMS  int `json:"retrieval_latency_ms" binding:"omitempty,min=0"`
	GenerationLatencyMS int `json:"generation_latency_ms" binding:"omitempty,min=0"`
	TotalLatencyMS      int `json:"total_latency_ms" binding:"omitempty,min=0"`
	TokenCount          int `json:"token_count" binding:"omitempty,min=0"`
}

type RecordFeedbackRequest struct {
	Score int    `json:"score" binding:"required,min=1,max=5"`
	Text  string `json:"text" binding:"omitempty,max=2048"`
}

func NewQueryHandler(queryService *app.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Record logs one completed retrieval+generation transaction. The user and
// organization come from the token, so a caller cannot attribute a query to
// another tenant.
func (h *QueryHandler) Record(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req RecordQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	q, err := h.queryService.Record(c.Request.Context(), app.RecordQueryInput{
		UserID:          userID,
		OrganizationID:  orgID,
		QueryText:       req.QueryText,
		Intent:          req.Intent,
		RetrievedDocIDs: req.RetrievedDocIDs,
		ResponseText:    req.ResponseText,
		CitationsUsed:   req.CitationsUsed,
		Metrics: app.QueryMetrics{
			RetrievalLatencyMS:  req.RetrievalLatencyMS,
			GenerationLatencyMS: req.GenerationLatencyMS,
			TotalLatencyMS:      req.TotalLatencyMS,
			TokenCount:          req.TokenCount,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrOrganizationMismatch):
			response.Error(c, http.StatusConflict, response.CodeOrgMismatch, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record query failed")
		}
		return
	}
	response.OK(c, q)
}

func (h *QueryHandler) Feedback(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req RecordFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.queryService.RecordFeedback(c.Request.Context(), orgID, c.Param("id"), req.Score, req.Text); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrQueryNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record feedback failed")
		}
		return
	}
	response.OK(c, gin.H{"query_id": c.Param("id"), "score": req.Score})
}

func (h *QueryHandler) List(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	opts := repository.QueryListOptions{
		UserID: c.Query("user_id"),
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		opts.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		opts.To = &to
	}
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	queries, err := h.queryService.List(c.Request.Context(), orgID, opts)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list queries failed")
		return
	}
	response.OK(c, queries)
}

func (h *QueryHandler) Get(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	q, err := h.queryService.Get(orgID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrQueryNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch query failed")
		}
		return
	}
	response.OK(c, q)
}

func (h *QueryHandler) Usage(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	stats, err := h.queryService.Usage(orgID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch usage stats failed")
		return
	}
	response.OK(c, stats)
}
