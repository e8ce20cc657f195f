package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/irisplus/internal/service"
)

// StatsHandler serves catalog lifecycle statistics
func StatsHandler(statsService *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := statsService.Calculate(c.UserContext())
		if err != nil {
			log.Error("stats failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("error loading stats"))
		}
		return c.JSON(fiber.Map{"data": stats})
	}
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the database is reachable
func HealthHandler(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
