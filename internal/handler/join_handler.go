package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/validator"
)

// JoinHandler handles join-code lookup and membership entry.
type JoinHandler struct {
	joinService *service.JoinService
}

// NewJoinHandler creates a new JoinHandler.
func NewJoinHandler(joinService *service.JoinService) *JoinHandler {
	return &JoinHandler{joinService: joinService}
}

// JoinRequest carries a join code and, for the parent channel, the
// children to link.
type JoinRequest struct {
	Code       string   `json:"code" binding:"required,joincode"`
	StudentIDs []string `json:"student_ids" binding:"omitempty,dive,uuid"`
}

// normalizeCode maps user input onto the issuing alphabet's case.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupCode godoc
// GET /api/v1/join/:code
// Classifies a join code without joining, so the client can show what
// the code opens before the user commits.
func (h *JoinHandler) LookupCode(c *gin.Context) {
	lookup, err := h.joinService.LookupCode(c.Request.Context(), normalizeCode(c.Param("code")))
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCodeNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lookup": lookup})
}

// Join godoc
// POST /api/v1/join
// Redeems a join code through whichever channel issued it.
func (h *JoinHandler) Join(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req JoinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := c.Request.Context()
	lookup, err := h.joinService.LookupCode(ctx, normalizeCode(req.Code))
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCodeNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	switch lookup.Kind {
	case service.CodeOrganization:
		err = h.joinService.JoinOrganization(ctx, claims.UserID, lookup.EntityID)
	case service.CodeClassStudent:
		_, err = h.joinService.JoinClassAsStudent(ctx, claims.UserID, lookup.EntityID)
	case service.CodeClassTeacher:
		_, err = h.joinService.JoinClassAsTeacher(ctx, claims.UserID, lookup.EntityID)
	case service.CodeClassParent:
		_, err = h.joinService.JoinClassAsParent(ctx, claims.UserID, lookup.EntityID, req.StudentIDs)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyMember):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyMember)
		case errors.Is(err, service.ErrNoStudents):
			response.Fail(c, http.StatusBadRequest, response.ErrNoStudentsChosen)
		default:
			failStoreError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lookup": lookup})
}

// ClassStudents godoc
// GET /api/v1/join/:code/students
// Lists a class's students for the parent flow, so a parent can pick
// their children before redeeming a parent code.
func (h *JoinHandler) ClassStudents(c *gin.Context) {
	ctx := c.Request.Context()

	lookup, err := h.joinService.LookupCode(ctx, normalizeCode(c.Param("code")))
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCodeNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if lookup.Kind != service.CodeClassParent {
		response.Fail(c, http.StatusNotFound, response.ErrCodeNotFound)
		return
	}

	students, err := h.joinService.ClassStudents(ctx, lookup.EntityID)
	if err != nil {
		failStoreError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}
