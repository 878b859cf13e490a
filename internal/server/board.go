package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/view"
)

type dragRequest struct {
	TaskID string `json:"taskId"`
	OverID string `json:"overId"`
}

// handleBoard returns the filtered tasks grouped into status columns.
func (s *Server) handleBoard(c *gin.Context) {
	filters, sortBy, err := s.filtersFromQuery(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	statuses := s.statuses.List()
	tasks := s.view.Derive(s.tasks.List(), filters, sortBy)
	respondSuccess(c, http.StatusOK, gin.H{
		"columns":  view.Columns(tasks, statuses),
		"orphaned": len(view.Orphans(tasks, statuses)),
		"sortBy":   sortBy,
		"filters":  view.SummarizeFilters(filters, statuses),
	})
}

// handleStats reports total, active and completed counts over all tasks.
func (s *Server) handleStats(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"stats": view.ComputeStats(s.tasks.List())})
}

// handleCategories lists the categories offered by the category filter.
func (s *Server) handleCategories(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"categories": view.Categories(s.tasks.List())})
}

// handleDragState reports the current drag gesture.
func (s *Server) handleDragState(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"drag": s.drag.Snapshot()})
}

// handleDragStart records the dragged task.
func (s *Server) handleDragStart(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"drag": s.drag.Start(req.TaskID)})
}

// handleDragOver records the target under the pointer.
func (s *Server) handleDragOver(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"drag": s.drag.Over(req.OverID)})
}

// handleDragDrop ends the gesture; a drop on a status moves the task there.
func (s *Server) handleDragDrop(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"result": s.drag.Drop(c.Request.Context(), req.OverID)})
}

// handleDragCancel abandons the gesture.
func (s *Server) handleDragCancel(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"result": s.drag.Cancel()})
}
