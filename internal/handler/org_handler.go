package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/joincode"
	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/store"
	"github.com/classgrid/classgrid-backend/internal/validator"
)

// OrgHandler handles organization management.
type OrgHandler struct {
	orgService *service.OrgService
	auditStore *store.AuditStore
}

// NewOrgHandler creates a new OrgHandler.
func NewOrgHandler(orgService *service.OrgService, auditStore *store.AuditStore) *OrgHandler {
	return &OrgHandler{orgService: orgService, auditStore: auditStore}
}

// ListOrgs godoc
// GET /api/v1/orgs
// Lists organizations the caller owns or belongs to.
func (h *OrgHandler) ListOrgs(c *gin.Context) {
	claims := middleware.GetClaims(c)
	orgs, err := h.orgService.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrg godoc
// GET /api/v1/orgs/:org_id
// Returns one organization with memberships loaded. Requires membership.
func (h *OrgHandler) GetOrg(c *gin.Context) {
	org, err := h.orgService.GetByID(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		failStoreError(c, err)
		return
	}
	// The join code grants entry; only scope managers get to see it.
	if sa, ok := middleware.GetScopeAccess(c); !ok || !sa.Role.Role.IsTeacherOrAbove() {
		org.JoinCode = ""
	}
	response.Success(c, http.StatusOK, gin.H{"organization": org})
}

// CreateOrg godoc
// POST /api/v1/orgs
// Creates an organization owned by the caller, issuing its join code.
func (h *OrgHandler) CreateOrg(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateOrgRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, joincode.ErrGenerationExhausted) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrCodeGeneration)
			return
		}
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"organization": org})
}

// UpdateOrg godoc
// PUT /api/v1/orgs/:org_id
// Updates an organization. Requires admin or owner.
func (h *OrgHandler) UpdateOrg(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.UpdateOrgRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), claims.UserID, c.Param("org_id"), req)
	if err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"organization": org})
}

// DeleteOrg godoc
// DELETE /api/v1/orgs/:org_id
// Deletes an organization. Owner only; undoable within the window.
func (h *OrgHandler) DeleteOrg(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.orgService.Delete(c.Request.Context(), claims.UserID, c.Param("org_id")); err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "organization deleted"})
}

// MemberRequest names a user and a role relation to grant or revoke.
type MemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=admins teachers students parents"`
}

// GrantRole godoc
// POST /api/v1/orgs/:org_id/members
// Links a user into one of the organization's role sets.
func (h *OrgHandler) GrantRole(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req MemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.orgService.GrantRole(c.Request.Context(), claims.UserID, c.Param("org_id"), req.Role, req.UserID); err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role granted"})
}

// RevokeRole godoc
// DELETE /api/v1/orgs/:org_id/members
// Unlinks a user from one of the organization's role sets.
func (h *OrgHandler) RevokeRole(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req MemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.orgService.RevokeRole(c.Request.Context(), claims.UserID, c.Param("org_id"), req.Role, req.UserID); err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role revoked"})
}

// GetOrgAudit godoc
// GET /api/v1/orgs/:org_id/audit
// Lists recent audit events for the organization.
func (h *OrgHandler) GetOrgAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.auditStore.ListByScope(c.Request.Context(), "organization", c.Param("org_id"), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}
