package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/drag"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/status"
	"taskboard/internal/task"
	"taskboard/internal/view"
)

// Deps are the components the HTTP layer composes.
type Deps struct {
	Statuses    *status.Registry
	Tasks       *task.Store
	View        *view.Engine
	Drag        *drag.Controller
	Metrics     *metrics.Metrics
	DefaultSort models.SortOption
	StaticDir   string
	Logger      *slog.Logger
}

// Server provides HTTP handlers for the board frontend.
type Server struct {
	engine      *gin.Engine
	statuses    *status.Registry
	tasks       *task.Store
	view        *view.Engine
	drag        *drag.Controller
	metrics     *metrics.Metrics
	defaultSort models.SortOption
	logger      *slog.Logger
	staticDir   string
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaultSort := deps.DefaultSort
	if defaultSort == "" {
		defaultSort = models.SortDateAdded
	}
	engine := deps.View
	if engine == nil {
		engine = &view.Engine{}
	}
	dragCtl := deps.Drag
	if dragCtl == nil {
		dragCtl = drag.NewController(deps.Tasks, deps.Statuses, logger, deps.Metrics.ObserveDrag)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz", "/metrics"))

	srv := &Server{
		engine:      router,
		statuses:    deps.Statuses,
		tasks:       deps.Tasks,
		view:        engine,
		drag:        dragCtl,
		metrics:     deps.Metrics,
		defaultSort: defaultSort,
		logger:      logger,
		staticDir:   deps.StaticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/palette", s.handlePalette)

		statuses := api.Group("/statuses")
		{
			statuses.GET("", s.handleListStatuses)
			statuses.POST("", s.handleCreateStatus)
			statuses.POST("/reorder", s.handleReorderStatuses)
			statuses.PUT("/:id", s.handleUpdateStatus)
			statuses.DELETE("/:id", s.handleDeleteStatus)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.POST("/reassign", s.handleReassignTasks)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.POST("/:id/toggle", s.handleToggleTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
		}

		api.GET("/board", s.handleBoard)
		api.GET("/stats", s.handleStats)
		api.GET("/categories", s.handleCategories)

		dragGroup := api.Group("/drag")
		{
			dragGroup.GET("", s.handleDragState)
			dragGroup.POST("/start", s.handleDragStart)
			dragGroup.POST("/over", s.handleDragOver)
			dragGroup.POST("/drop", s.handleDragDrop)
			dragGroup.POST("/cancel", s.handleDragCancel)
		}
	}

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "statuses": s.statuses.Count()})
}

// handlePalette lists the colors a status may use.
func (s *Server) handlePalette(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"palette": models.Palette})
}

// statusFor maps the error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvariant):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Warn("request failed", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
