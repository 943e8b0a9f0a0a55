package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/notify"
)

type changesResponse struct {
	Revision uint64          `json:"revision"`
	Changes  []notify.Change `json:"changes"`
	// Complete is false when changes were dropped; re-read everything
	// and continue from Revision.
	Complete bool `json:"complete"`
}

// handleChanges returns the changes after since. With wait it blocks until
// there is at least one, the wait expires or the client goes away.
func (s *Server) handleChanges(c echo.Context) error {
	var since uint64
	if v := c.QueryParam("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest(c, "since must be a revision number")
		}
		since = n
	}

	var wait time.Duration
	if v := c.QueryParam("wait"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return badRequest(c, "wait must be a duration such as 30s")
		}
		wait = min(d, s.maxWait)
	}

	hub := s.board.Changes()
	if current := hub.Revision(); since > current {
		// revisions restart with the process
		return c.JSON(http.StatusOK, changesResponse{Revision: current, Changes: []notify.Change{}})
	}
	if wait > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
		_, _ = hub.Wait(ctx, since)
		cancel()
		if err := c.Request().Context().Err(); err != nil {
			return nil
		}
	}

	resp := changesResponse{Revision: hub.Revision(), Changes: []notify.Change{}, Complete: true}
	changes, complete := hub.Since(since)
	resp.Complete = complete
	if complete && len(changes) > 0 {
		resp.Changes = changes
		resp.Revision = changes[len(changes)-1].Revision
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVerify(c echo.Context) error {
	violations, err := s.board.Verify(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	if violations == nil {
		violations = []board.Violation{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"consistent": len(violations) == 0,
		"violations": violations,
	})
}

func (s *Server) handleRepair(c echo.Context) error {
	written, err := s.board.Repair(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"renumbered": written})
}
