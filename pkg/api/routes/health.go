package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

func HealthCheck(pinger Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := pinger.PingContext(c.Context()); err != nil {
			c.SendStatus(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status": "ok",
		})
	}
}
