package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
)

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// handleListStatuses returns the statuses in board order.
func (s *Server) handleListStatuses(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{
		"statuses": s.statuses.List(),
		"max":      models.MaxStatuses,
	})
}

// handleCreateStatus adds a workflow status.
func (s *Server) handleCreateStatus(c *gin.Context) {
	var req models.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	created, err := s.statuses.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"status": created})
}

// handleUpdateStatus edits label, value, color, description or position.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req models.StatusPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := s.statuses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": updated})
}

// handleDeleteStatus removes a status. With ?reassignTo=<id> its tasks are
// then moved to that status; without it they are left pointing at the
// deleted id and disappear from the board. The status is deleted first so a
// failed reassignment leaves orphans that a retry of the reassign can fix.
func (s *Server) handleDeleteStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	reassignTo := c.Query("reassignTo")

	if reassignTo != "" {
		if reassignTo == id {
			s.respondError(c, http.StatusBadRequest, models.Validationf("cannot reassign tasks to the status being deleted"))
			return
		}
		if !s.statuses.Exists(reassignTo) {
			s.respondError(c, http.StatusBadRequest, models.Validationf("status %q does not exist", reassignTo))
			return
		}
	}

	if err := s.statuses.Delete(ctx, id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	moved := 0
	if reassignTo != "" {
		var err error
		moved, err = s.tasks.ReassignStatus(ctx, id, reassignTo)
		if err != nil {
			s.respondError(c, statusFor(err), err)
			return
		}
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted", "reassigned": moved})
}

// handleReorderStatuses assigns positions following the posted id order.
func (s *Server) handleReorderStatuses(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.statuses.Reorder(c.Request.Context(), req.IDs); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"statuses": s.statuses.List()})
}
