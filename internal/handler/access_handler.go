package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/access"
	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
)

// AccessHandler exposes role and target-user resolution so clients can
// drive their UI from the server's view of the subject's standing.
type AccessHandler struct {
	accessService *service.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// accessView is the wire shape of a resolved ScopeAccess. Pending is
// reported rather than aborted here: this endpoint exists precisely so
// the client can tell "still determining" apart from "denied".
type accessView struct {
	Pending         bool   `json:"pending"`
	Role            string `json:"role,omitempty"`
	OwnerOrAdmin    bool   `json:"owner_or_admin"`
	TeacherOrAbove  bool   `json:"teacher_or_above"`
	StudentOrParent bool   `json:"student_or_parent"`
	Target          string `json:"target"`
	TargetUserID    string `json:"target_user_id,omitempty"`
}

func buildAccessView(sa service.ScopeAccess) accessView {
	view := accessView{Pending: sa.Role.Pending()}
	if !view.Pending {
		view.Role = string(sa.Role.Role)
		view.OwnerOrAdmin = sa.Role.Role.IsOwnerOrAdmin()
		view.TeacherOrAbove = sa.Role.Role.IsTeacherOrAbove()
		view.StudentOrParent = sa.Role.Role.IsStudentOrParent()
	}

	switch sa.Target.State {
	case access.TargetPending:
		view.Target = "pending"
	case access.TargetAll:
		view.Target = "all"
	case access.TargetUser:
		view.Target = "user"
		view.TargetUserID = sa.Target.UserID
	case access.TargetNone:
		view.Target = "none"
	}

	return view
}

// GetOrgAccess godoc
// GET /api/v1/orgs/:org_id/access?child_id=
// Resolves the caller's role and target user within an organization.
func (h *AccessHandler) GetOrgAccess(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sa, err := h.accessService.ResolveOrg(c.Request.Context(), claims.UserID, c.Param("org_id"), c.Query("child_id"))
	if err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access": buildAccessView(sa)})
}

// GetClassAccess godoc
// GET /api/v1/classes/:class_id/access?child_id=
// Resolves the caller's role and target user within a class.
func (h *AccessHandler) GetClassAccess(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sa, err := h.accessService.ResolveClass(c.Request.Context(), claims.UserID, c.Param("class_id"), c.Query("child_id"))
	if err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access": buildAccessView(sa)})
}
