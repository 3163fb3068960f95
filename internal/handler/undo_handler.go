package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
	"github.com/classgrid/classgrid-backend/internal/undo"
)

// UndoHandler exposes the caller's single pending undo.
type UndoHandler struct {
	undoLog *undo.Log
	events  *service.EventService
}

// NewUndoHandler creates a new UndoHandler.
func NewUndoHandler(undoLog *undo.Log, events *service.EventService) *UndoHandler {
	return &UndoHandler{undoLog: undoLog, events: events}
}

// GetPending godoc
// GET /api/v1/undo
// Returns the caller's pending undo so the client can render the
// affordance with its message and expiry.
func (h *UndoHandler) GetPending(c *gin.Context) {
	claims := middleware.GetClaims(c)

	pending, ok := h.undoLog.Pending(claims.UserID)
	if !ok {
		response.Success(c, http.StatusOK, gin.H{"pending": nil})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pending": pending})
}

// Undo godoc
// POST /api/v1/undo
// Replays the inverse of the caller's pending action. At most once: a
// failed replay does not leave the action retryable.
func (h *UndoHandler) Undo(c *gin.Context) {
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	err := h.undoLog.Undo(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, undo.ErrNothingPending) {
			response.Fail(c, http.StatusNotFound, response.ErrNothingToUndo)
			return
		}
		h.events.Publish(ctx, service.Event{
			Kind:      model.AuditUndoFailed,
			SubjectID: claims.UserID,
			Detail:    err.Error(),
		})
		response.Fail(c, http.StatusConflict, response.ErrUndoFailed)
		return
	}

	h.events.Publish(ctx, service.Event{
		Kind:      model.AuditUndoApplied,
		SubjectID: claims.UserID,
	})
	response.Success(c, http.StatusOK, gin.H{"message": "action undone"})
}
