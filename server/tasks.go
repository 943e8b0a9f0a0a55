package server

import (
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kissboard/internal/model"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// parseStatus accepts "" as well as the aliases the CLI understands
func parseStatus(s string) (model.Status, error) {
	if s == "" {
		return "", nil
	}
	return model.ParseStatus(strings.ToLower(s))
}

func (s *Server) handleListTasks(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := parseStatus(c.QueryParam("status"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	var tasks []model.Task
	if status == "" {
		tasks, err = s.board.ListTasks(ctx, c.Param("id"))
	} else {
		tasks, err = s.board.ListColumn(ctx, c.Param("id"), status)
	}
	if err != nil {
		return apiError(c, err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	task, err := s.board.CreateTask(c.Request().Context(), c.Param("id"), status, req.Title, req.Description)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c echo.Context) error {
	task, err := s.board.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var patch model.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request")
	}

	task, err := s.board.UpdateTask(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.board.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleMoveTask moves a task to status at position. A missing status keeps
// the current column; a missing position means the bottom.
func (s *Server) handleMoveTask(c echo.Context) error {
	ctx := c.Request().Context()

	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	position := math.MaxInt32
	if req.Position != nil {
		position = *req.Position
	}

	task, err := s.board.MoveTask(ctx, c.Param("id"), status, position)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}
