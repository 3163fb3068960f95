package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/access"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/store"
)

// ContextKeyScopeAccess is the Gin context key for the resolved
// ScopeAccess of the current request.
const ContextKeyScopeAccess = "scope_access"

// ScopeKind selects which resolver a guard runs.
type ScopeKind string

const (
	ScopeOrg   ScopeKind = "org"
	ScopeClass ScopeKind = "class"
)

// guard resolves the subject's role in the scope named by the idParam
// route parameter and rejects the request unless permit(role) holds.
// A Pending resolution is answered with ROLE_PENDING, never with an
// access denial.
func guard(accessService *service.AccessService, kind ScopeKind, idParam string, code response.ErrCode, permit func(access.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		scopeID := c.Param(idParam)
		if scopeID == "" {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}

		var (
			sa  service.ScopeAccess
			err error
		)
		selectedChild := c.Query("child_id")
		if kind == ScopeOrg {
			sa, err = accessService.ResolveOrg(c.Request.Context(), claims.UserID, scopeID, selectedChild)
		} else {
			sa, err = accessService.ResolveClass(c.Request.Context(), claims.UserID, scopeID, selectedChild)
		}
		if err != nil {
			abortStoreError(c, err)
			return
		}

		if sa.Role.Pending() {
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrRolePending)
			return
		}
		if !permit(sa.Role.Role) {
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}

		c.Set(ContextKeyScopeAccess, sa)
		c.Next()
	}
}

// RequireMember admits any resolved role except RoleNone.
func RequireMember(accessService *service.AccessService, kind ScopeKind, idParam string) gin.HandlerFunc {
	return guard(accessService, kind, idParam, response.ErrForbidden, func(r access.Role) bool {
		return r != access.RoleNone
	})
}

// RequireTeacherOrAbove admits owners, admins and teachers.
func RequireTeacherOrAbove(accessService *service.AccessService, kind ScopeKind, idParam string) gin.HandlerFunc {
	return guard(accessService, kind, idParam, response.ErrTeacherOrAbove, access.Role.IsTeacherOrAbove)
}

// RequireOwnerOrAdmin admits owners and admins.
func RequireOwnerOrAdmin(accessService *service.AccessService, kind ScopeKind, idParam string) gin.HandlerFunc {
	return guard(accessService, kind, idParam, response.ErrAdminOrAbove, access.Role.IsOwnerOrAdmin)
}

// RequireOwner admits only the scope owner.
func RequireOwner(accessService *service.AccessService, kind ScopeKind, idParam string) gin.HandlerFunc {
	return guard(accessService, kind, idParam, response.ErrOwnerOnly, func(r access.Role) bool {
		return r == access.RoleOwner
	})
}

func abortStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		response.AbortFail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
}

// GetScopeAccess retrieves the ScopeAccess a guard stored on the
// context.
func GetScopeAccess(c *gin.Context) (service.ScopeAccess, bool) {
	val, exists := c.Get(ContextKeyScopeAccess)
	if !exists {
		return service.ScopeAccess{}, false
	}
	sa, ok := val.(service.ScopeAccess)
	return sa, ok
}
