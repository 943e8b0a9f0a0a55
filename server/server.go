// Package server exposes the board over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/logger"
)

// DefaultMaxWait caps how long a change feed request may block
const DefaultMaxWait = 60 * time.Second

// Server is the board API server
type Server struct {
	board   *board.Board
	echo    *echo.Echo
	maxWait time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithMaxWait sets the upper bound of the change feed wait parameter
func WithMaxWait(d time.Duration) Option {
	return func(s *Server) { s.maxWait = d }
}

// New creates a server for b
func New(b *board.Board, opts ...Option) *Server {
	s := &Server{
		board:   b,
		maxWait: DefaultMaxWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("16M"))

	// Health check
	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")

	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects/:id", s.handleGetProject)
	api.PATCH("/projects/:id", s.handleUpdateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)
	api.POST("/projects/:id/move", s.handleMoveProject)
	api.GET("/projects/:id/count", s.handleCountTasks)
	api.GET("/projects/:id/columns", s.handleColumns)
	api.GET("/projects/:id/tasks", s.handleListTasks)
	api.POST("/projects/:id/tasks", s.handleCreateTask)

	api.GET("/tasks/:id", s.handleGetTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
	api.POST("/tasks/:id/move", s.handleMoveTask)
	api.GET("/tasks/:id/images", s.handleListImages)
	api.POST("/tasks/:id/images", s.handleAddImage)

	api.GET("/images/:id", s.handleGetImage)
	api.DELETE("/images/:id", s.handleDeleteImage)

	api.GET("/changes", s.handleChanges)
	api.GET("/doctor", s.handleVerify)
	api.POST("/doctor/repair", s.handleRepair)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	logger.Info("Starting HTTP server", logger.F("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"revision": s.board.Changes().Revision(),
	})
}

// apiError maps board errors to a JSON error response
func apiError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, board.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, board.ErrInvalid):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, board.ErrPrecondition):
		logger.Error("Board positions are inconsistent", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "stored positions are inconsistent; run kissboard doctor --fix",
		})
	case errors.Is(err, context.Canceled):
		return nil
	default:
		logger.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
