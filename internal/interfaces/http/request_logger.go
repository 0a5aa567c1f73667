package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
)

const (
	localLogger     = "logger"
	headerRequestID = "X-Request-ID"
)

var nopLogger = logger.Nop()

// RequestLogger asigna un request id (o respeta el recibido) y registra una línea por petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(headerRequestID, reqID)
		reqLog := log.WithStr("request_id", reqID)
		c.Locals(localLogger, reqLog)

		err := c.Next()

		status := c.Response().StatusCode()
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError || err != nil {
			ev = reqLog.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("user_id", GetUserID(c)).
			Str("role", GetRole(c)).
			Msg("http")
		return err
	}
}

// requestLogger devuelve el logger de la petición o uno nulo si no pasó por RequestLogger.
func requestLogger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return nopLogger
}
