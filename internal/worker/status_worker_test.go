package worker

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"legalresearch/internal/app"
	"legalresearch/internal/model"
	"legalresearch/internal/repository"
)

func newTestServices(t *testing.T) (*app.TenantService, *app.DocumentService) {
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

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	return app.NewTenantService(orgRepo, userRepo), app.NewDocumentService(orgRepo, docRepo, nil)
}

func TestApplyStatusEvent(t *testing.T) {
	tenants, docs := newTestServices(t)
	w := NewStatusWorker(nil, docs, "document.status")

	org, err := tenants.CreateOrganization(app.CreateOrganizationInput{Name: "Firm", Slug: "firm"})
	require.NoError(t, err)
	doc, err := docs.Ingest(context.Background(), app.IngestDocumentInput{
		OrganizationID: org.ID,
		Title:          "State v. Example",
		DocumentType:   model.DocTypeCaseLaw,
		StorageRef:     "s3://bucket/doc.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, w.apply(StatusEvent{
		DocumentID:     doc.ID,
		OrganizationID: org.ID,
		Status:         model.StatusProcessing,
	}))
	require.NoError(t, w.apply(StatusEvent{
		DocumentID:     doc.ID,
		OrganizationID: org.ID,
		Status:         model.StatusCompleted,
		VectorIndexed:  true,
	}))

	got, err := docs.Get(org.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.ProcessingStatus)
	assert.True(t, got.VectorIndexed)
}

func TestApplyStatusEventRejectsWrongOrganization(t *testing.T) {
	tenants, docs := newTestServices(t)
	w := NewStatusWorker(nil, docs, "document.status")

	orgA, err := tenants.CreateOrganization(app.CreateOrganizationInput{Name: "Firm A", Slug: "firm-a"})
	require.NoError(t, err)
	orgB, err := tenants.CreateOrganization(app.CreateOrganizationInput{Name: "Firm B", Slug: "firm-b"})
	require.NoError(t, err)
	doc, err := docs.Ingest(context.Background(), app.IngestDocumentInput{
		OrganizationID: orgA.ID,
		Title:          "State v. Example",
		DocumentType:   model.DocTypeCaseLaw,
		StorageRef:     "s3://bucket/doc.pdf",
	})
	require.NoError(t, err)

	err = w.apply(StatusEvent{
		DocumentID:     doc.ID,
		OrganizationID: orgB.ID,
		Status:         model.StatusProcessing,
	})
	assert.ErrorIs(t, err, app.ErrDocumentNotFound)

	// Events missing the organization are dropped as invalid.
	err = w.apply(StatusEvent{DocumentID: doc.ID, Status: model.StatusProcessing})
	assert.ErrorIs(t, err, app.ErrInvalidInput)

	got, err := docs.Get(orgA.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.ProcessingStatus)
}
