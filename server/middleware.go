package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/kissboard/internal/logger"
)

// requestLogger logs every request once it has been served
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			fields := []logger.Field{
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()),
				logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			}
			if res.Status >= 500 {
				logger.Warn("HTTP Response", fields...)
			} else {
				logger.Debug("HTTP Response", fields...)
			}
			return nil
		}
	}
}
