package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kissboard/internal/model"
)

func (s *Server) handleListImages(c echo.Context) error {
	images, err := s.board.ListImages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	if images == nil {
		images = []model.TaskImage{}
	}
	return c.JSON(http.StatusOK, images)
}

// handleAddImage stores the raw request body as an image of the task. The
// name comes from the name query parameter, the type from Content-Type.
func (s *Server) handleAddImage(c echo.Context) error {
	req := c.Request()

	// one byte past the limit is enough for the board to reject it
	data, err := io.ReadAll(io.LimitReader(req.Body, model.MaxImageSize+1))
	if err != nil {
		return badRequest(c, "failed to read body")
	}

	mimeType := req.Header.Get(echo.HeaderContentType)
	if mimeType == "" || strings.HasPrefix(mimeType, echo.MIMEOctetStream) {
		mimeType = http.DetectContentType(data)
	}

	img, err := s.board.AddImage(req.Context(), c.Param("id"), c.QueryParam("name"), mimeType, data)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}

// handleGetImage serves the image data; the digest doubles as ETag
func (s *Server) handleGetImage(c echo.Context) error {
	img, err := s.board.GetImage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}

	etag := `"` + img.Digest + `"`
	c.Response().Header().Set("ETag", etag)
	c.Response().Header().Set("Cache-Control", "private, max-age=0, must-revalidate")
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Blob(http.StatusOK, img.MimeType, img.Data)
}

func (s *Server) handleDeleteImage(c echo.Context) error {
	if err := s.board.DeleteImage(c.Request().Context(), c.Param("id")); err != nil {
		return apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
