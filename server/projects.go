package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kissboard/internal/model"
)

type projectRequest struct {
	Name *string `json:"name"`
}

type moveRequest struct {
	Status   string `json:"status,omitempty"`
	Position *int   `json:"position"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.board.ListProjects(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Name == nil {
		return badRequest(c, "name required")
	}

	p, err := s.board.CreateProject(c.Request().Context(), *req.Name)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, err := s.board.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	p, err := s.board.UpdateProject(c.Request().Context(), c.Param("id"), model.ProjectPatch{Name: req.Name})
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.board.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMoveProject(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Position == nil {
		return badRequest(c, "position required")
	}

	p, err := s.board.MoveProject(c.Request().Context(), c.Param("id"), *req.Position)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCountTasks(c echo.Context) error {
	n, err := s.board.CountTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"tasks": n})
}

func (s *Server) handleColumns(c echo.Context) error {
	columns, err := s.board.Columns(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, columns)
}
