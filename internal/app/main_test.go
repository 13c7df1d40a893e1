package app

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"legalresearch/internal/model"
	"legalresearch/internal/platform/rabbitmq"
	"legalresearch/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Document{},
		&model.Query{},
	))
	return db
}

func newTenantService(db *gorm.DB) *TenantService {
	return NewTenantService(
		repository.NewOrganizationRepository(db),
		repository.NewUserRepository(db),
	)
}

func newDocumentService(db *gorm.DB, publisher IngestEventPublisher) *DocumentService {
	return NewDocumentService(
		repository.NewOrganizationRepository(db),
		repository.NewDocumentRepository(db),
		publisher,
	)
}

func newQueryService(db *gorm.DB, cache RecentQueryCache) *QueryService {
	return NewQueryService(
		repository.NewUserRepository(db),
		repository.NewQueryRepository(db),
		repository.NewDocumentRepository(db),
		cache,
	)
}

// stubPublisher records published events; Publish fails when failWith is set.
type stubPublisher struct {
	events   []rabbitmq.DocumentIngestedEvent
	failWith error
}

func (p *stubPublisher) Publish(_ context.Context, event rabbitmq.DocumentIngestedEvent) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.events = append(p.events, event)
	return nil
}

// stubCache counts operations and holds at most one page.
type stubCache struct {
	page        []model.Query
	hit         bool
	gets        int
	sets        int
	invalidated int
}

func (c *stubCache) Get(_ context.Context, _ string) ([]model.Query, bool, error) {
	c.gets++
	return c.page, c.hit, nil
}

func (c *stubCache) Set(_ context.Context, _ string, queries []model.Query) error {
	c.sets++
	c.page = queries
	c.hit = true
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, _ string) error {
	c.invalidated++
	c.page = nil
	c.hit = false
	return nil
}

func mustCreateOrg(t *testing.T, svc *TenantService, slug string) *model.Organization {
	t.Helper()
	org, err := svc.CreateOrganization(CreateOrganizationInput{
		Name: "Test Firm",
		Slug: slug,
		Tier: model.TierFree,
	})
	require.NoError(t, err)
	return org
}

func mustCreateUser(t *testing.T, svc *TenantService, orgID, email string) *model.User {
	t.Helper()
	user, err := svc.CreateUser(CreateUserInput{
		Email:          email,
		FullName:       "Test User",
		OrganizationID: orgID,
		Role:           model.RoleLawyer,
	})
	require.NoError(t, err)
	return user
}
