// Package log emits structured request-scoped events. Every entry carries
// the request id, method, path and client IP when a fiber context is
// available.
package log

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup adjusts the global level; unknown levels leave the default (info).
func Setup(level string) {
	if lv, err := zerolog.ParseLevel(level); err == nil {
		logger = logger.Level(lv)
	}
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, fields map[string]any) {
	if c != nil {
		ev = ev.Str("ip", c.IP()).Str("method", c.Method()).Str("path", c.Path())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info(), c, action, fields)
}

// Audit records state-changing actions (orders placed, status changes,
// catalog edits) for the operational trail.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Info().Str("kind", "audit"), c, action, fields)
}

// Security records rejected or suspicious input.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger.Warn().Str("kind", "security"), c, action, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logger.Error().Err(err), c, action, fields)
}
