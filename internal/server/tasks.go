package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/view"
)

type reassignRequest struct {
	From string `json:"fromStatusId"`
	To   string `json:"toStatusId"`
}

// filtersFromQuery reads ?status=&category=&priority=&q=&sort=.
// Multi-valued filters use repeated parameters.
func (s *Server) filtersFromQuery(c *gin.Context) (models.Filters, models.SortOption, error) {
	filters := models.Filters{
		Statuses:   c.QueryArray("status"),
		Categories: c.QueryArray("category"),
		SearchText: c.Query("q"),
	}
	for _, p := range c.QueryArray("priority") {
		filters.Priorities = append(filters.Priorities, models.Priority(p))
	}

	raw := c.Query("sort")
	if raw == "" {
		return filters, s.defaultSort, nil
	}
	sortBy, err := models.ParseSortOption(raw)
	return filters, sortBy, err
}

// handleListTasks returns the filtered and sorted task list.
func (s *Server) handleListTasks(c *gin.Context) {
	filters, sortBy, err := s.filtersFromQuery(c)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	tasks := s.view.Derive(s.tasks.List(), filters, sortBy)
	respondSuccess(c, http.StatusOK, gin.H{
		"tasks":   tasks,
		"sortBy":  sortBy,
		"filters": view.SummarizeFilters(filters, s.statuses.List()),
	})
}

// handleCreateTask adds a task; the default status is used when none is given.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	created, err := s.tasks.Add(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": created})
}

// handleUpdateTask applies a partial update. Unknown ids are not an error.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req models.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	updated, ok := s.tasks.Update(c.Request.Context(), c.Param("id"), req)
	if !ok {
		respondSuccess(c, http.StatusOK, gin.H{"updated": false})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"updated": true, "task": updated})
}

// handleToggleTask flips the completion flag.
func (s *Server) handleToggleTask(c *gin.Context) {
	toggled, ok := s.tasks.ToggleCompleted(c.Request.Context(), c.Param("id"))
	if !ok {
		respondSuccess(c, http.StatusOK, gin.H{"updated": false})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"updated": true, "task": toggled})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	deleted := s.tasks.Delete(c.Request.Context(), c.Param("id"))
	respondSuccess(c, http.StatusOK, gin.H{"deleted": deleted})
}

// handleReassignTasks moves every task from one status to another.
func (s *Server) handleReassignTasks(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	moved, err := s.tasks.ReassignStatus(c.Request.Context(), req.From, req.To)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"reassigned": moved})
}
