package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalresearch/internal/model"
)

func TestCreateOrganizationIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)

	input := CreateOrganizationInput{Name: "Demo Law Firm", Slug: "demo-law-firm", Tier: model.TierPro}

	first, err := svc.CreateOrganization(input)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// Running the same onboarding twice returns the same row, not a second one.
	second, err := svc.CreateOrganization(input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.Organization{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrganizationValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)

	cases := []struct {
		name  string
		input CreateOrganizationInput
	}{
		{"empty name", CreateOrganizationInput{Slug: "ok-slug"}},
		{"bad slug", CreateOrganizationInput{Name: "Firm", Slug: "Not A Slug"}},
		{"trailing hyphen", CreateOrganizationInput{Name: "Firm", Slug: "firm-"}},
		{"bad tier", CreateOrganizationInput{Name: "Firm", Slug: "firm", Tier: "platinum"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrganization(tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	org, err := svc.CreateOrganization(CreateOrganizationInput{Name: "Firm", Slug: "firm"})
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, org.SubscriptionTier, "tier defaults to free")
}

func TestCreateUserIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)
	org := mustCreateOrg(t, svc, "demo-law-firm")

	input := CreateUserInput{
		Email:          "admin@demolawfirm.com",
		FullName:       "Admin User",
		OrganizationID: org.ID,
		Role:           model.RoleAdmin,
	}

	first, err := svc.CreateUser(input)
	require.NoError(t, err)

	second, err := svc.CreateUser(input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateUserMissingOrganization(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)

	_, err := svc.CreateUser(CreateUserInput{
		Email:          "a@b.test",
		FullName:       "A",
		OrganizationID: "no-such-org",
	})
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)
	org := mustCreateOrg(t, svc, "firm")

	_, err := svc.CreateUser(CreateUserInput{Email: "not-an-email", FullName: "A", OrganizationID: org.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateUser(CreateUserInput{Email: "a@b.test", FullName: "A", OrganizationID: org.ID, Role: "partner"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	user, err := svc.CreateUser(CreateUserInput{Email: "a@b.test", FullName: "A", OrganizationID: org.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RoleLawyer, user.Role, "role defaults to lawyer")
}

func TestUpdateTier(t *testing.T) {
	db := newTestDB(t)
	svc := newTenantService(db)
	org := mustCreateOrg(t, svc, "firm")

	require.NoError(t, svc.UpdateTier(org.ID, model.TierEnterprise))

	got, err := svc.GetOrganization(org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierEnterprise, got.SubscriptionTier)

	assert.ErrorIs(t, svc.UpdateTier(org.ID, "platinum"), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateTier("no-such-org", model.TierPro), ErrOrganizationNotFound)
}

func TestDeleteOrganizationCascades(t *testing.T) {
	db := newTestDB(t)
	tenants := newTenantService(db)
	docs := newDocumentService(db, nil)
	queries := newQueryService(db, nil)

	org := mustCreateOrg(t, tenants, "firm")
	user := mustCreateUser(t, tenants, org.ID, "lawyer@firm.test")

	doc, err := docs.Ingest(context.Background(), IngestDocumentInput{
		OrganizationID: org.ID,
		Title:          "State v. Example",
		DocumentType:   model.DocTypeCaseLaw,
		StorageRef:     "s3://bucket/doc.pdf",
	})
	require.NoError(t, err)

	_, err = queries.Record(context.Background(), RecordQueryInput{
		UserID:          user.ID,
		OrganizationID:  org.ID,
		QueryText:       "anticipatory bail precedents",
		RetrievedDocIDs: []string{doc.ID},
		ResponseText:    "answer",
	})
	require.NoError(t, err)

	require.NoError(t, tenants.DeleteOrganization(org.ID))

	_, err = tenants.GetOrganization(org.ID)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	var users, documents, queryRows int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Document{}).Count(&documents).Error)
	require.NoError(t, db.Model(&model.Query{}).Count(&queryRows).Error)
	assert.Zero(t, users)
	assert.Zero(t, documents)
	assert.Zero(t, queryRows)

	assert.ErrorIs(t, tenants.DeleteOrganization(org.ID), ErrOrganizationNotFound)
}
