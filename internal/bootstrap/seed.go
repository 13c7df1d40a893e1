package bootstrap

import (
	"fmt"

	"legalresearch/internal/app"
	"legalresearch/internal/model"
)

// Seed creates the demo tenant on first run. Both creates are create-if-absent,
// so running it on every start is safe: a second run finds the existing rows
// and changes nothing.
func Seed(tenants *app.TenantService, adminPassword string) error {
	org, err := tenants.CreateOrganization(app.CreateOrganizationInput{
		Name: "Demo Law Firm",
		Slug: "demo-law-firm",
		Tier: model.TierPro,
	})
	if err != nil {
		return fmt.Errorf("seed organization failed: %w", err)
	}

	if _, err := tenants.CreateUser(app.CreateUserInput{
		Email:          "admin@demolawfirm.com",
		FullName:       "Admin User",
		OrganizationID: org.ID,
		Role:           model.RoleAdmin,
		Password:       adminPassword,
	}); err != nil {
		return fmt.Errorf("seed admin user failed: %w", err)
	}
	return nil
}
