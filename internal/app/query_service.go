package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"legalresearch/internal/model"
	"legalresearch/internal/repository"
)

var validIntents = map[string]bool{
	model.IntentCaseLookup:      true,
	model.IntentStatuteLookup:   true,
	model.IntentGeneralResearch: true,
}

// RecentQueryCache caches the default audit log page per organization. A nil
// cache disables caching; cache failures never fail the primary path.
type RecentQueryCache interface {
	Get(ctx context.Context, organizationID string) ([]model.Query, bool, error)
	Set(ctx context.Context, organizationID string, queries []model.Query) error
	Invalidate(ctx context.Context, organizationID string) error
}

type QueryService struct {
	userRepo  *repository.UserRepository
	queryRepo *repository.QueryRepository
	docRepo   *repository.DocumentRepository
	cache     RecentQueryCache
}

func NewQueryService(
	userRepo *repository.UserRepository,
	queryRepo *repository.QueryRepository,
	docRepo *repository.DocumentRepository,
	cache RecentQueryCache,
) *QueryService {
	return &QueryService{
		userRepo:  userRepo,
		queryRepo: queryRepo,
		docRepo:   docRepo,
		cache:     cache,
	}
}

type QueryMetrics struct {
	RetrievalLatencyMS  int
	GenerationLatencyMS int
	TotalLatencyMS      int
	TokenCount          int
}

type RecordQueryInput struct {
	UserID          string
	OrganizationID  string
	QueryText       string
	Intent          string
	RetrievedDocIDs []string
	ResponseText    string
	CitationsUsed   []string
	Metrics         QueryMetrics
}

// Record appends one completed search-and-answer transaction to the audit
// log. The denormalized organization id must match the issuing user's
// organization; a mismatch is an integrity violation, not a silent fixup.
func (s *QueryService) Record(ctx context.Context, input RecordQueryInput) (*model.Query, error) {
	text := strings.TrimSpace(input.QueryText)
	if text == "" || input.UserID == "" || input.OrganizationID == "" {
		return nil, ErrInvalidInput
	}

	var intent *string
	if input.Intent != "" {
		if !validIntents[input.Intent] {
			return nil, ErrInvalidInput
		}
		intent = &input.Intent
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.OrganizationID != input.OrganizationID {
		return nil, ErrOrganizationMismatch
	}

	m := input.Metrics
	if m.TotalLatencyMS < m.RetrievalLatencyMS+m.GenerationLatencyMS {
		log.Printf("query total latency %dms below retrieval %dms + generation %dms (user %s)",
			m.TotalLatencyMS, m.RetrievalLatencyMS, m.GenerationLatencyMS, user.ID)
	}

	q := &model.Query{
		UserID:              user.ID,
		OrganizationID:      user.OrganizationID,
		QueryText:           text,
		Intent:              intent,
		RetrievedDocIDs:     input.RetrievedDocIDs,
		ResponseText:        input.ResponseText,
		CitationsUsed:       input.CitationsUsed,
		RetrievalLatencyMS:  m.RetrievalLatencyMS,
		GenerationLatencyMS: m.GenerationLatencyMS,
		TotalLatencyMS:      m.TotalLatencyMS,
		TokenCount:          m.TokenCount,
	}
	if err := s.queryRepo.Create(q); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, user.OrganizationID); err != nil {
			log.Printf("invalidate query cache failed: %v", err)
		}
	}
	return q, nil
}

// RecordFeedback is the only mutation permitted after a query is written.
func (s *QueryService) RecordFeedback(ctx context.Context, organizationID, queryID string, score int, text string) error {
	if organizationID == "" || queryID == "" {
		return ErrInvalidInput
	}
	if err := s.queryRepo.UpdateFeedback(organizationID, queryID, score, strings.TrimSpace(text)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQueryNotFound
		}
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, organizationID); err != nil {
			log.Printf("invalidate query cache failed: %v", err)
		}
	}
	return nil
}

// cachedPageSize is how many rows the cached first page holds. Cached reads
// always trim down from this, so any first-page limit up to it is served from
// the same entry.
const cachedPageSize = 100

// List returns the audit log newest-first. The unfiltered first page is
// served from cache when available.
func (s *QueryService) List(ctx context.Context, organizationID string, opts repository.QueryListOptions) ([]model.Query, error) {
	if organizationID == "" {
		return nil, ErrInvalidInput
	}

	cacheable := s.cache != nil && opts.UserID == "" && opts.From == nil && opts.To == nil &&
		opts.Offset == 0 && opts.Limit > 0 && opts.Limit <= cachedPageSize
	if !cacheable {
		return s.queryRepo.List(organizationID, opts)
	}

	if cached, hit, err := s.cache.Get(ctx, organizationID); err == nil && hit {
		return trimQueries(cached, opts.Limit), nil
	}

	page, err := s.queryRepo.List(organizationID, repository.QueryListOptions{Limit: cachedPageSize})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, organizationID, page); err != nil {
		log.Printf("set query cache failed: %v", err)
	}
	return trimQueries(page, opts.Limit), nil
}

func (s *QueryService) Get(organizationID, queryID string) (*model.Query, error) {
	if organizationID == "" || queryID == "" {
		return nil, ErrInvalidInput
	}
	q, err := s.queryRepo.GetByID(organizationID, queryID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQueryNotFound
	}
	return q, nil
}

// UsageStats backs the reporting dashboards.
type UsageStats struct {
	QueryCount        int64   `json:"query_count"`
	DocumentCount     int64   `json:"document_count"`
	AvgTotalLatencyMS float64 `json:"avg_total_latency_ms"`
}

func (s *QueryService) Usage(organizationID string) (*UsageStats, error) {
	if organizationID == "" {
		return nil, ErrInvalidInput
	}
	queries, err := s.queryRepo.CountByOrganizationID(organizationID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.CountByOrganizationID(organizationID)
	if err != nil {
		return nil, err
	}
	avg, err := s.queryRepo.AverageTotalLatencyMS(organizationID)
	if err != nil {
		return nil, err
	}
	return &UsageStats{
		QueryCount:        queries,
		DocumentCount:     docs,
		AvgTotalLatencyMS: avg,
	}, nil
}

func trimQueries(queries []model.Query, limit int) []model.Query {
	if limit <= 0 || limit >= len(queries) {
		return queries
	}
	return queries[:limit]
}
