package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const healthPingTimeout = 2 * time.Second

// Pinger dependencia con comprobación de conexión (p. ej. caché Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler GET /health. Si cache implementa Pinger se comprueba; con el
// driver en memoria no hay nada que comprobar.
func HealthHandler(service string, cache any) fiber.Handler {
	pinger, _ := cache.(Pinger)
	return func(c *fiber.Ctx) error {
		if pinger == nil {
			return c.JSON(fiber.Map{"status": "ok", "service": service})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded", "service": service, "cache": "down", "error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service, "cache": "up"})
	}
}
