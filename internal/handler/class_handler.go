package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/joincode"
	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/validator"
)

// ClassHandler handles class management.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// hideJoinCodes blanks the role-channel codes for callers who cannot
// manage the class.
func hideJoinCodes(c *gin.Context, class *model.Class) {
	if sa, ok := middleware.GetScopeAccess(c); ok && sa.Role.Role.IsTeacherOrAbove() {
		return
	}
	class.JoinCodeStudent = ""
	class.JoinCodeTeacher = ""
	class.JoinCodeParent = ""
}

// ListClasses godoc
// GET /api/v1/orgs/:org_id/classes
// Lists an organization's classes. Requires org membership.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.ListByOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	for i := range classes {
		hideJoinCodes(c, &classes[i])
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/classes/:class_id
// Returns one class with memberships loaded. Requires class membership.
func (h *ClassHandler) GetClass(c *gin.Context) {
	class, err := h.classService.GetByID(c.Request.Context(), c.Param("class_id"))
	if err != nil {
		failStoreError(c, err)
		return
	}
	hideJoinCodes(c, class)
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// CreateClass godoc
// POST /api/v1/orgs/:org_id/classes
// Creates a class in the organization, issuing its three join codes.
// Requires teacher or above in the organization.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), claims.UserID, c.Param("org_id"), req)
	if err != nil {
		if errors.Is(err, joincode.ErrGenerationExhausted) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrCodeGeneration)
			return
		}
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// UpdateClass godoc
// PUT /api/v1/classes/:class_id
// Updates a class. Requires teacher or above in the class.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), claims.UserID, c.Param("class_id"), req)
	if err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/v1/classes/:class_id
// Deletes a class. Requires admin or owner; undoable within the window.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.classService.Delete(c.Request.Context(), claims.UserID, c.Param("class_id")); err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class deleted"})
}

// ReissueJoinCodes godoc
// POST /api/v1/classes/:class_id/join-codes
// Replaces all three role-channel codes; the old codes stop working.
// Requires admin or owner.
func (h *ClassHandler) ReissueJoinCodes(c *gin.Context) {
	claims := middleware.GetClaims(c)

	class, err := h.classService.ReissueJoinCodes(c.Request.Context(), claims.UserID, c.Param("class_id"))
	if err != nil {
		if errors.Is(err, joincode.ErrGenerationExhausted) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrCodeGeneration)
			return
		}
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// RemoveMember godoc
// DELETE /api/v1/classes/:class_id/members
// Unlinks a user from one of the class's role sets. Requires teacher or
// above; undoable within the window.
func (h *ClassHandler) RemoveMember(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req MemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.classService.RemoveMember(c.Request.Context(), claims.UserID, c.Param("class_id"), req.Role, req.UserID); err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "member removed"})
}
