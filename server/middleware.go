package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/wirebind/wirebind/config"
	"github.com/wirebind/wirebind/logger"
)

// SetupMiddlewares configures and registers the HTTP middlewares for the
// Echo server: request IDs, request logging, panic recovery, and a body
// size limit.
func SetupMiddlewares(e *echo.Echo, log logger.Logger, cfg *config.Config) {
	// Request ID
	e.Use(middleware.RequestID())

	// Logger middleware with zerolog
	e.Use(Logger(log))

	// Recovery
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("stack", string(stack)).
				Msg("Panic recovered")
			return err
		},
	}))

	// Body limit
	e.Use(middleware.BodyLimit("10M"))
}

// Logger returns a request logging middleware that emits one summary line
// per request through the configured logger.
func Logger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status

			event := log.Info()
			if err != nil || status >= 500 {
				event = log.Error()
			} else if status >= 400 {
				event = log.Warn()
			}

			event.
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			if err != nil {
				event.Err(err)
			}
			event.Msg("Request completed")

			return nil
		}
	}
}
