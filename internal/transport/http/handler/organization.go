package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalresearch/internal/app"
	"legalresearch/internal/model"
	"legalresearch/internal/transport/http/response"
)

type OrganizationHandler struct {
	tenantService *app.TenantService
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Slug string `json:"slug" binding:"required,max=128"`
	Tier string `json:"tier" binding:"omitempty,max=32"`
}

type CreateUserRequest struct {
	Email          string `json:"email" binding:"required,email,max=255"`
	FullName       string `json:"full_name" binding:"required,max=255"`
	OrganizationID string `json:"organization_id" binding:"required"`
	Role           string `json:"role" binding:"omitempty,max=32"`
	Password       string `json:"password" binding:"omitempty,min=8,max=128"`
}

type UpdateTierRequest struct {
	Tier string `json:"tier" binding:"required,max=32"`
}

func NewOrganizationHandler(tenantService *app.TenantService) *OrganizationHandler {
	return &OrganizationHandler{tenantService: tenantService}
}

// Create is the onboarding endpoint. Create-if-absent: posting an existing
// slug returns the organization that already owns it.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	org, err := h.tenantService.CreateOrganization(app.CreateOrganizationInput{
		Name: req.Name,
		Slug: req.Slug,
		Tier: req.Tier,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create organization failed")
		}
		return
	}
	response.OK(c, org)
}

func (h *OrganizationHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.tenantService.CreateUser(app.CreateUserInput{
		Email:          req.Email,
		FullName:       req.FullName,
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
		Password:       req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrOrganizationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create user failed")
		}
		return
	}
	response.OK(c, user)
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	org, err := h.tenantService.GetOrganization(orgID)
	if err != nil {
		if errors.Is(err, app.ErrOrganizationNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch organization failed")
		}
		return
	}
	response.OK(c, org)
}

func (h *OrganizationHandler) ListUsers(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	users, err := h.tenantService.ListUsers(orgID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list users failed")
		return
	}
	response.OK(c, users)
}

// UpdateTier changes the caller's own organization tier; admin only.
func (h *OrganizationHandler) UpdateTier(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	if getRoleFromContext(c) != model.RoleAdmin {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "admin role required")
		return
	}

	var req UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.tenantService.UpdateTier(orgID, req.Tier); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrOrganizationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update tier failed")
		}
		return
	}
	response.OK(c, gin.H{"organization_id": orgID, "tier": req.Tier})
}

// Delete tears down the caller's own organization and everything it owns.
// Irreversible; admin only.
func (h *OrganizationHandler) Delete(c *gin.Context) {
	orgID, ok := getOrgIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	if getRoleFromContext(c) != model.RoleAdmin {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "admin role required")
		return
	}

	if err := h.tenantService.DeleteOrganization(orgID); err != nil {
		if errors.Is(err, app.ErrOrganizationNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete organization failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_organization_id": orgID})
}
