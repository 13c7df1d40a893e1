package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"legalresearch/internal/model"
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

func seedOrg(t *testing.T, db *gorm.DB, slug string) *model.Organization {
	t.Helper()
	org := &model.Organization{
		Name:             slug,
		Slug:             slug,
		SubscriptionTier: model.TierFree,
	}
	require.NoError(t, NewOrganizationRepository(db).Create(org))
	return org
}

func seedUser(t *testing.T, db *gorm.DB, orgID, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:          email,
		FullName:       "Test User",
		OrganizationID: orgID,
		Role:           model.RoleLawyer,
	}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}

func seedDocument(t *testing.T, db *gorm.DB, orgID string, mutate func(*model.Document)) *model.Document {
	t.Helper()
	doc := &model.Document{
		OrganizationID:   orgID,
		Title:            "State v. Example",
		DocumentType:     model.DocTypeCaseLaw,
		StorageRef:       "s3://bucket/doc.pdf",
		FileSizeBytes:    1024,
		ProcessingStatus: model.StatusPending,
	}
	if mutate != nil {
		mutate(doc)
	}
	require.NoError(t, NewDocumentRepository(db).Create(doc))
	return doc
}

func seedQuery(t *testing.T, db *gorm.DB, orgID, userID string, createdAt time.Time) *model.Query {
	t.Helper()
	q := &model.Query{
		UserID:         userID,
		OrganizationID: orgID,
		QueryText:      "anticipatory bail precedents",
		ResponseText:   "answer",
		TotalLatencyMS: 100,
		CreatedAt:      createdAt,
	}
	require.NoError(t, NewQueryRepository(db).Create(q))
	return q
}
