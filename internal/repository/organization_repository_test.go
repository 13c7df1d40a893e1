package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"legalresearch/internal/model"
)

func TestOrganizationCreateDuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db)

	first := &model.Organization{Name: "Demo Law Firm", Slug: "demo-law-firm", SubscriptionTier: model.TierPro}
	require.NoError(t, repo.Create(first))

	dup := &model.Organization{Name: "Demo Law Firm", Slug: "demo-law-firm", SubscriptionTier: model.TierPro}
	err := repo.Create(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&model.Organization{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOrganizationGetBySlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db)
	org := seedOrg(t, db, "acme-legal")

	got, err := repo.GetBySlug("acme-legal")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, org.ID, got.ID)

	missing, err := repo.GetBySlug("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrganizationUpdateTier(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db)
	org := seedOrg(t, db, "acme-legal")

	require.NoError(t, repo.UpdateTier(org.ID, model.TierEnterprise))

	got, err := repo.GetByID(org.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.TierEnterprise, got.SubscriptionTier)

	assert.ErrorIs(t, repo.UpdateTier("missing-id", model.TierPro), gorm.ErrRecordNotFound)
}

func TestOrganizationDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db)

	victim := seedOrg(t, db, "victim-firm")
	victimUser := seedUser(t, db, victim.ID, "a@victim.test")
	seedDocument(t, db, victim.ID, nil)
	seedQuery(t, db, victim.ID, victimUser.ID, time.Now())

	survivor := seedOrg(t, db, "survivor-firm")
	survivorUser := seedUser(t, db, survivor.ID, "a@survivor.test")
	seedDocument(t, db, survivor.ID, nil)
	seedQuery(t, db, survivor.ID, survivorUser.ID, time.Now())

	require.NoError(t, repo.DeleteCascade(victim.ID))

	var users, docs, queries int64
	require.NoError(t, db.Model(&model.User{}).Where("organization_id = ?", victim.ID).Count(&users).Error)
	require.NoError(t, db.Model(&model.Document{}).Where("organization_id = ?", victim.ID).Count(&docs).Error)
	require.NoError(t, db.Model(&model.Query{}).Where("organization_id = ?", victim.ID).Count(&queries).Error)
	assert.Zero(t, users)
	assert.Zero(t, docs)
	assert.Zero(t, queries)

	gone, err := repo.GetByID(victim.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The other tenant is untouched.
	require.NoError(t, db.Model(&model.User{}).Where("organization_id = ?", survivor.ID).Count(&users).Error)
	require.NoError(t, db.Model(&model.Document{}).Where("organization_id = ?", survivor.ID).Count(&docs).Error)
	require.NoError(t, db.Model(&model.Query{}).Where("organization_id = ?", survivor.ID).Count(&queries).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, docs)
	assert.EqualValues(t, 1, queries)
}

func TestOrganizationDeleteCascadeMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db)

	assert.ErrorIs(t, repo.DeleteCascade("missing-id"), gorm.ErrRecordNotFound)
}
